package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// HandleTerminationProcess возвращает контекст, который отменяется по SIGINT или SIGTERM.
// Очистку вызывающий выполняет сам после отмены.
func HandleTerminationProcess(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
