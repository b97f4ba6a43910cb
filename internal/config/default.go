package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"
)

// Field is one registered setting.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Default holds every registered field by key.
var Default = make(map[string]Field)

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
	}

	register(PlayerSources, []string{}, "Sources to play, in order. Command line arguments take precedence")
	register(PlayerAutoPlay, true, "Start playing as soon as a source has loaded")
	register(PlayerLooping, true, "Restart a source when it reaches its end")
	register(PlayerHideDelay, 5000, "Milliseconds of inactivity before the controls hide")
	register(PlayerPollInterval, 500, "Milliseconds between engine status updates")
	register(PlayerViewportWidth, 160, "Decode width in pixels")
	register(PlayerViewportHeight, 90, "Decode height in pixels")
	register(PlayerVideoFrameMillis, 0, "Milliseconds between frame captures for the ambient backdrop, 0 disables capture")

	register(CaptureDir, filepath.Join(os.TempDir(), "pixlfx", "frames"), "Directory captured frames are written to")
	register(CaptureFormat, "jpeg", "Captured frame format: jpeg or webp")
	register(CaptureQuality, 80, "Encoder quality for captured frames, 1 to 100")
	register(CaptureKeep, 8, "How many captured frames to keep on disk")
	register(CaptureSerialize, false, "Skip a capture tick while the previous capture is still running")

	register(AmbientEnabled, true, "Draw the ambient backdrop around the video")
	register(AmbientDelay, 0, "Milliseconds before the backdrop starts fading in")
	register(AmbientImageFade, 4000, "Milliseconds the blurred image takes to fade in")
	register(AmbientGradientFade, 2000, "Milliseconds the gradient takes to fade in")
	register(AmbientCrossfade, 4000, "Milliseconds between two backdrop frames")
	register(AmbientBlur, 6.0, "Blur sigma in pixels")
	register(AmbientGradientColors, []string{"#000000", "#000000", "#000000"}, "Gradient colours from top to bottom")
	register(AmbientGradientAlphas, []float64{0.2, 0.5, 1}, "Gradient opacities, one per colour")
	register(AmbientDefaultFrame, "", "Image shown behind the player until the first frame is captured")

	register(CrossfadeDuration, 500, "Milliseconds of a crossfade between two images")
	register(CrossfadeReverse, false, "Fade the old image out while the new one fades in")

	register(LogsPath, "", "Write logs to this file, empty disables logging")
	register(LogsLevel, "info", "trace, debug, info, warn or error")
}

// Keys lists registered keys in sorted order.
func Keys() []string {
	keys := lo.Keys(Default)
	sort.Strings(keys)
	return keys
}
