package uploadsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimulatedUploader_Upload(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		wantName string
		wantErr  error
	}{
		{name: "plain name", fileName: "intro.mp4", wantName: "intro.mp4"},
		{name: "strips directories", fileName: "/tmp/videos/intro.mp4", wantName: "intro.mp4"},
		{name: "strips windows directories", fileName: `C:\videos\intro.mp4`, wantName: "intro.mp4"},
		{name: "blank name", fileName: "  ", wantErr: ErrInvalidFileName},
	}

	up := NewSimulatedUploader(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := up.Upload(context.Background(), tt.fileName)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestSimulatedUploader_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := NewSimulatedUploader(time.Minute).Upload(ctx, "intro.mp4")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
