package worker

import (
	"github.com/leadops/lead-dashboard/internal/service"
)

// StartNotificationWorker registers change notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
