package gear

import (
	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
	"golang.org/x/exp/slog"
)

// debugRelay forwards debug utils messenger output into a structured logger so that
// validation output lands in the same stream as the rest of the application's logs
type debugRelay struct {
	logger *slog.Logger
}

func (r *debugRelay) callback(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		r.logger.Error(data.Message, slog.String("MessageType", msgType.String()))
	case severity&ext_debug_utils.SeverityWarning != 0:
		r.logger.Warn(data.Message, slog.String("MessageType", msgType.String()))
	default:
		r.logger.Info(data.Message, slog.String("MessageType", msgType.String()))
	}

	return false
}
