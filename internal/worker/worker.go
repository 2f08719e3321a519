// Package worker contains methods for worker to init at start, and to process tasks
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/avolkov/cropfill/internal/cropfill"
	"github.com/avolkov/cropfill/internal/model"
	"github.com/avolkov/cropfill/internal/service"
	kafkago "github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
)

type TaskWorkerService interface {
	UpdateStatus(ctx context.Context, id string, newStat model.Status) error
	SaveResult(ctx context.Context, res *model.Task) error
	Get(ctx context.Context, id string) (*model.Task, error)
}

type Worker struct {
	storage      service.ImageStorage
	service      TaskWorkerService
	queue        <-chan kafkago.Message
	consumer     *wbfkafka.Consumer
	resultPrefix string
}

func NewWorkerInstance(strg service.ImageStorage, svc TaskWorkerService, q <-chan kafkago.Message, cons *wbfkafka.Consumer, resPr string) *Worker {
	return &Worker{storage: strg, service: svc, queue: q, consumer: cons, resultPrefix: resPr}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				log.Println("Queue channel closed, stopping worker...")
				return
			}
			id := string(msg.Key)
			if err := w.initProcessor(ctx, id); err != nil && !errors.Is(err, model.ErrTaskNotFound) {
				log.Printf("Task %s failed: %v", id, err)
				continue
			}
			if err := w.consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit queue-message: %v", err)
			}
		}
	}
}

func (w *Worker) initProcessor(ctx context.Context, id string) error {
	task, err := w.service.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("worker failed to fetch task %q from DB: %w", id, err)
	}

	switch task.Status {
	case model.StatusDone:
		return nil
	case model.StatusInProgress:
		return fmt.Errorf("already in progress")
	}

	// Result may already exist from a previous delivery of the same message.
	if strings.Contains(task.ResultKey, w.resultPrefix) {
		if err := w.service.UpdateStatus(ctx, id, model.StatusDone); err != nil {
			return fmt.Errorf("failed to update status of already-done task in DB: %w", err)
		}
		return nil
	}

	if err := w.service.UpdateStatus(ctx, id, model.StatusInProgress); err != nil {
		return fmt.Errorf("failed to update status of task %q to `in_progress` in DB: %w", id, err)
	}

	if pErr := w.processTask(ctx, task); pErr != nil {
		task.Status = model.StatusFailed
		task.ErrMsg = append(task.ErrMsg, pErr.Error())
		if sErr := w.service.SaveResult(ctx, task); sErr != nil {
			return fmt.Errorf("failed to mark task %q as failed in DB: %w \nAFTER\n error while processing task: %w", id, sErr, pErr)
		}
		return fmt.Errorf("failed to process task %q: %w", id, pErr)
	}

	return nil
}

func (w *Worker) processTask(ctx context.Context, task *model.Task) error {
	src, _, err := w.storage.Get(ctx, task.SourceKey)
	if err != nil {
		return fmt.Errorf("worker failed to fetch source image from storage: %w", err)
	}
	defer closeFileFlow(src)

	// The crop-fill core takes a file path, so the object is staged to a
	// temp file first.
	srcPath, err := stageToTempFile(src)
	if err != nil {
		return fmt.Errorf("worker failed to stage source image to disk: %w", err)
	}
	defer removeTempFile(srcPath)

	img, err := cropfill.Load(srcPath)
	if err != nil {
		return fmt.Errorf("worker failed to load source image: %w", err)
	}

	var width, height int
	if task.Width != nil {
		width = *task.Width
	}
	if task.Height != nil {
		height = *task.Height
	}

	var opts *cropfill.Options
	if task.Quality != nil {
		opts = &cropfill.Options{Quality: *task.Quality}
	}

	result, err := img.Resize(width, height, opts)
	if err != nil {
		return fmt.Errorf("worker failed to crop-fill image: %w", err)
	}

	resCType := model.GetCType[img.Format()]
	resKey := w.resultPrefix + task.UID.String() + model.GetImageFileExt[resCType]
	if err := w.storage.Put(ctx, resKey, int64(len(result)), resCType, bytes.NewReader(result)); err != nil {
		return fmt.Errorf("worker failed to put result image to storage: %w", err)
	}

	task.Status = model.StatusDone
	task.ResultKey = resKey

	if err := w.service.SaveResult(ctx, task); err != nil {
		return fmt.Errorf("worker failed to save result to DB: %w", err)
	}
	return nil
}

func stageToTempFile(r io.Reader) (string, error) {
	if r == nil {
		return "", errors.New("nil-reader provided")
	}

	f, err := os.CreateTemp("", "cropfill-src-*")
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		removeTempFile(f.Name())
		return "", err
	}

	if err := f.Close(); err != nil {
		removeTempFile(f.Name())
		return "", err
	}

	return f.Name(), nil
}

func removeTempFile(path string) {
	if err := os.Remove(path); err != nil {
		log.Println("Worker failed to remove temp file:", err)
	}
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}

	if err := res.Close(); err != nil {
		log.Println("Worker failed to close fileflow:", err)
	}
}
