// Package natsrpc exposes the execution gateway over NATS request/reply,
// mirroring the HTTP contract for callers that live on the message bus.
package natsrpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/sakif/coderunner/internal/apperror"
	"github.com/sakif/coderunner/internal/handler"
	"github.com/sakif/coderunner/internal/provider"
)

// Subject is the request/reply subject the gateway listens on.
const Subject = "exec.request"

// Subscribe registers the execute handler on the connection. The returned
// subscription should be drained during shutdown.
func Subscribe(nc *nats.Conn, gateway handler.Executor, logger *slog.Logger) (*nats.Subscription, error) {
	sub, err := nc.Subscribe(Subject, func(msg *nats.Msg) {
		handle(msg, gateway, logger)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("nats execute endpoint registered", slog.String("subject", Subject))
	return sub, nil
}

func handle(msg *nats.Msg, gateway handler.Executor, logger *slog.Logger) {
	respond(msg, dispatch(msg.Data, gateway, logger), logger)
}

// dispatch turns one raw request payload into the result to reply with.
func dispatch(data []byte, gateway handler.Executor, logger *slog.Logger) *provider.Result {
	var req provider.Request
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Warn("invalid nats execution request", slog.String("error", err.Error()))
		return &provider.Result{
			Error:   "request must be valid JSON",
			Service: provider.ServiceNone,
		}
	}

	res, err := gateway.Execute(context.Background(), req.Code, req.Stdin)
	if err != nil {
		// Over NATS there is no status code to carry the validation verdict,
		// so it travels as a failed result with the human-readable message.
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = &apperror.AppError{Message: "An internal error occurred"}
		}
		return &provider.Result{
			Error:   appErr.Message,
			Service: provider.ServiceNone,
		}
	}

	return res
}

func respond(msg *nats.Msg, res *provider.Result, logger *slog.Logger) {
	data, err := json.Marshal(res)
	if err != nil {
		logger.Error("failed to encode nats response", slog.String("error", err.Error()))
		return
	}
	if err := msg.Respond(data); err != nil {
		logger.Error("failed to send nats response", slog.String("error", err.Error()))
	}
}
