package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := NewCmd().ExecuteContext(ctx); err != nil {
		logrus.Errorf("cachedemo: %v", err)
		os.Exit(1)
	}
}
