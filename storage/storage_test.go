package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Location
		wantErr bool
	}{
		{in: "ltc.wav", want: Location{Scheme: "file", Key: "ltc.wav"}},
		{in: "/tmp/out/ltc.wav", want: Location{Scheme: "file", Key: "/tmp/out/ltc.wav"}},
		{in: "file:///tmp/ltc.wav", want: Location{Scheme: "file", Key: "/tmp/ltc.wav"}},
		{in: "s3://bucket/ltc/a.wav", want: Location{Scheme: "s3", Bucket: "bucket", Key: "ltc/a.wav"}},
		{in: "gs://bucket/a.wav", want: Location{Scheme: "gs", Bucket: "bucket", Key: "a.wav"}},
		{in: "s3://bucket", wantErr: true},
		{in: "file://host/tmp/ltc.wav", wantErr: true},
		{in: "file://localhost/tmp/ltc.wav", wantErr: true},
		{in: "ftp://host/a.wav", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseScheme(t *testing.T) {
	_, err := Parse("ftp://host/a.wav")
	if !errors.Is(err, ErrScheme) {
		t.Errorf("Parse() error = %v, want ErrScheme", err)
	}
}

func TestPutFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "nested", "ltc.wav")
	if err := Put(context.Background(), dst, "audio/wav", []byte("RIFF")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "RIFF" {
		t.Errorf("file contents = %q", data)
	}
}

type memBackend map[string][]byte

func (m memBackend) Put(_ context.Context, loc Location, contentType string, data []byte) error {
	m[loc.Bucket+"/"+loc.Key+"|"+contentType] = data
	return nil
}

func TestRegister(t *testing.T) {
	mem := memBackend{}
	if err := Register("mem", func(context.Context) (Backend, error) { return mem, nil }); err != nil {
		t.Fatal(err)
	}
	if err := Register("mem", nil); !errors.Is(err, ErrRegistered) {
		t.Errorf("second Register() error = %v, want ErrRegistered", err)
	}
	if diff := cmp.Diff([]string{"file", "gs", "mem", "s3"}, Schemes()); diff != "" {
		t.Errorf("Schemes() mismatch (-want +got):\n%s", diff)
	}

	if err := Put(context.Background(), "mem://b/ltc.wav", "audio/wav", []byte("RIFF")); err != nil {
		t.Fatal(err)
	}
	if got := string(mem["b/ltc.wav|audio/wav"]); got != "RIFF" {
		t.Errorf("stored %q", got)
	}
}
