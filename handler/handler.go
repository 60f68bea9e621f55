package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	amqp "github.com/rabbitmq/amqp091-go"

	"movie-file-service/dto"
	"movie-file-service/pkg/rabbitmq"
	"movie-file-service/service"
)

// TranscodeJobHandler decodes and screens queue deliveries before handing
// them to the transcode service.
//
// Broken payloads split two ways: a message missing required fields can
// never succeed and is dropped (acked); a message whose source URL has no
// resolvable host is poison and is rejected without requeue. Processing
// failures are likewise terminal for the delivery — an operator re-publishes
// after investigating.
func TranscodeJobHandler(svc service.TranscodeService) rabbitmq.HandlerFunc {
	return func(ctx context.Context, msg amqp.Delivery) error {
		var job dto.TranscodeJob
		if err := json.Unmarshal(msg.Body, &job); err != nil {
			return errors.Join(rabbitmq.ErrDropMessage, err)
		}
		if !job.Complete() {
			return errors.Join(rabbitmq.ErrDropMessage, errors.New("message missing required fields"))
		}

		src, err := url.Parse(job.FileURL)
		if err != nil || src.Hostname() == "" {
			return fmt.Errorf("cannot determine host from file_url %q", job.FileURL)
		}

		return svc.Process(ctx, job)
	}
}
