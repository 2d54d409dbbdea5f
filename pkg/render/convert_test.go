package render

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

func TestConvertWithoutConverter(t *testing.T) {
	if _, err := exec.LookPath(Converter); err == nil {
		t.Skip(Converter + " is installed")
	}
	if _, err := ToPDF(context.Background(), []byte("<svg/>")); !errors.Is(err, ErrNoConverter) {
		t.Errorf("ToPDF() error = %v, want ErrNoConverter", err)
	}
	if _, err := ToPNG(context.Background(), []byte("<svg/>"), 0); !errors.Is(err, ErrNoConverter) {
		t.Errorf("ToPNG() error = %v, want ErrNoConverter", err)
	}
}

func TestConvertCancelled(t *testing.T) {
	if _, err := exec.LookPath(Converter); err != nil {
		t.Skip(Converter + " is not installed")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ToPDF(ctx, []byte("<svg/>")); err == nil {
		t.Error("ToPDF() with a cancelled context should fail")
	}
}
