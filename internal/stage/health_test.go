package stage

import "testing"

func TestHealthConstructors(t *testing.T) {
	if h := Healthy("convert"); !h.Ready || h.Name != "convert" {
		t.Fatalf("unexpected healthy value %+v", h)
	}
	if h := Unhealthy("convert", "ffmpeg missing"); h.Ready || h.Detail != "ffmpeg missing" {
		t.Fatalf("unexpected unhealthy value %+v", h)
	}
}
