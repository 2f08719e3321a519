package worker

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"testing"

	"github.com/avolkov/cropfill/internal/cropfill"
	"github.com/avolkov/cropfill/internal/model"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestWorker_initProcessor(t *testing.T) {
	ctx := context.Background()
	id := uuid.New().String()

	tests := []struct {
		name      string
		task      *model.Task
		getErr    error
		updateErr error
		wantErr   bool
	}{
		{
			name:    "already done",
			task:    &model.Task{Status: model.StatusDone},
			wantErr: false,
		},
		{
			name:    "in progress",
			task:    &model.Task{Status: model.StatusInProgress},
			wantErr: true,
		},
		{
			name:    "task not found",
			getErr:  model.ErrTaskNotFound,
			wantErr: true,
		},
		{
			name:      "update status error",
			task:      &model.Task{Status: model.StatusCreated},
			updateErr: errors.New("db down"),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockWorkerService{
				getFn: func(ctx context.Context, _ string) (*model.Task, error) {
					return tt.task, tt.getErr
				},
				updateFn: func(ctx context.Context, _ string, _ model.Status) error {
					return tt.updateErr
				},
				saveResultFn: func(ctx context.Context, _ *model.Task) error {
					return nil
				},
			}

			w := &Worker{
				service:      svc,
				storage:      &mockStorage{},
				resultPrefix: "res/",
			}

			err := w.initProcessor(ctx, id)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestWorker_initProcessor_RecordsFailure(t *testing.T) {
	task := &model.Task{
		UID:       uuid.New(),
		Status:    model.StatusCreated,
		SourceKey: "src/broken.png",
		Width:     ptr(100),
	}

	storage := &mockStorage{
		getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
			return io.NopCloser(bytes.NewReader([]byte("not-an-image"))), "", nil
		},
	}

	var saved *model.Task
	svc := &mockWorkerService{
		getFn: func(ctx context.Context, _ string) (*model.Task, error) {
			return task, nil
		},
		updateFn: func(ctx context.Context, _ string, _ model.Status) error {
			return nil
		},
		saveResultFn: func(ctx context.Context, res *model.Task) error {
			saved = res
			return nil
		},
	}

	w := &Worker{service: svc, storage: storage, resultPrefix: "res/"}

	err := w.initProcessor(context.Background(), task.UID.String())
	require.Error(t, err)
	require.NotNil(t, saved)
	require.Equal(t, model.StatusFailed, saved.Status)
	require.NotEmpty(t, saved.ErrMsg)
}

func TestWorker_processTask_OK(t *testing.T) {
	ctx := context.Background()

	task := &model.Task{
		UID:       uuid.New(),
		Status:    model.StatusInProgress,
		SourceKey: "src.png",
		Width:     ptr(100),
		Height:    ptr(100),
	}

	storage := &mockStorage{
		getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
			return io.NopCloser(bytes.NewReader(validPNG())), model.PNG, nil
		},
		putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
			require.Contains(t, key, "res/")
			require.Equal(t, model.PNG, ct)

			res, err := imaging.Decode(r)
			require.NoError(t, err)
			require.Equal(t, 100, res.Bounds().Dx())
			require.Equal(t, 100, res.Bounds().Dy())
			return nil
		},
	}

	svc := &mockWorkerService{
		saveResultFn: func(ctx context.Context, task *model.Task) error {
			require.Equal(t, model.StatusDone, task.Status)
			require.NotEmpty(t, task.ResultKey)
			return nil
		},
		updateFn: func(ctx context.Context, _ string, _ model.Status) error {
			return nil
		},
		getFn: func(ctx context.Context, _ string) (*model.Task, error) {
			return task, nil
		},
	}

	w := &Worker{
		storage:      storage,
		service:      svc,
		resultPrefix: "res/",
	}

	require.NoError(t, w.processTask(ctx, task))
}

func TestWorker_processTask_SourceFetchError(t *testing.T) {
	w := &Worker{
		storage: &mockStorage{
			getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
				return nil, "", errors.New("storage down")
			},
		},
	}

	err := w.processTask(context.Background(), &model.Task{Width: ptr(100)})
	require.Error(t, err)
}

func TestWorker_processTask_InvalidImage(t *testing.T) {
	storage := &mockStorage{
		getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
			return io.NopCloser(bytes.NewReader([]byte("not-an-image"))), "", nil
		},
	}

	w := &Worker{storage: storage}

	err := w.processTask(context.Background(), &model.Task{Width: ptr(100)})
	require.ErrorIs(t, err, cropfill.ErrInvalidImageData)
}

func TestWorker_processTask_QualityOnPNG(t *testing.T) {
	storage := &mockStorage{
		getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
			return io.NopCloser(bytes.NewReader(validPNG())), model.PNG, nil
		},
	}

	w := &Worker{storage: storage}

	err := w.processTask(context.Background(), &model.Task{
		Width:   ptr(50),
		Quality: ptr(90),
	})
	require.ErrorIs(t, err, cropfill.ErrQualityUnsupported)
}

func TestWorker_processTask_QualityOnJPEG(t *testing.T) {
	task := &model.Task{
		UID:     uuid.New(),
		Width:   ptr(50),
		Quality: ptr(90),
	}

	storage := &mockStorage{
		getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
			return io.NopCloser(bytes.NewReader(validJPEG())), model.JPEG, nil
		},
		putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
			require.Equal(t, model.JPEG, ct)
			return nil
		},
	}

	svc := &mockWorkerService{
		saveResultFn: func(ctx context.Context, _ *model.Task) error { return nil },
	}

	w := &Worker{storage: storage, service: svc, resultPrefix: "res/"}

	require.NoError(t, w.processTask(context.Background(), task))
}

func ptr[T any](v T) *T { return &v }

func validPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 100, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func validJPEG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 100, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, nil)
	return buf.Bytes()
}
