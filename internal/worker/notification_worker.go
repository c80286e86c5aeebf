package worker

import (
	"context"

	"github.com/spec-kit/verif-backoffice/internal/service"
)

// StartNotificationWorker registers notification handlers and starts the arrival watcher.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, watcher *ArrivalWatcher) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	if watcher != nil {
		go watcher.Run(ctx)
	}
}
