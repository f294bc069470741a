package logger

import (
	"cloud.google.com/go/logging"
	"context"
	"fmt"
	"os"
)

// GoogleCloudLogger sends structured entries to Google Cloud Logging
type GoogleCloudLogger struct {
	client *logging.Client
	logger *logging.Logger
}

type cloudPayload struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// NewGoogleCloudLogger connects to Cloud Logging for the given project and log name
func NewGoogleCloudLogger(ctx context.Context, projectID string, logName string) (*GoogleCloudLogger, error) {
	client, err := logging.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &GoogleCloudLogger{
		client: client,
		logger: client.Logger(logName),
	}, nil
}

func (l *GoogleCloudLogger) log(severity logging.Severity, message string, err error) {
	payload := cloudPayload{Message: message}
	if err != nil {
		payload.Error = err.Error()
	}

	l.logger.Log(logging.Entry{Severity: severity, Payload: payload})
}

// Error is for throwing a log message with status Error
func (l *GoogleCloudLogger) Error(message string, err error) {
	l.log(logging.Error, message, err)
}

// Warning is for throwing a log message with status Warning
func (l *GoogleCloudLogger) Warning(message string, err error) {
	l.log(logging.Warning, message, err)
}

// Info is for throwing a log message with status Info
func (l *GoogleCloudLogger) Info(message string) {
	l.log(logging.Info, message, nil)
}

// Debug is for throwing a log message with status Debug
func (l *GoogleCloudLogger) Debug(message string) {
	l.log(logging.Debug, message, nil)
}

// Fatal logs synchronously and exits
func (l *GoogleCloudLogger) Fatal(err error) {
	_ = l.logger.LogSync(context.Background(), logging.Entry{
		Severity: logging.Critical,
		Payload:  cloudPayload{Message: "fatal error", Error: err.Error()},
	})
	_ = l.client.Close()
	fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
	os.Exit(1)
}

// Close flushes and closes the underlying client
func (l *GoogleCloudLogger) Close() error {
	return l.client.Close()
}
