package config

// Player
const (
	PlayerSources          = "player.sources"
	PlayerAutoPlay         = "player.auto_play"
	PlayerLooping          = "player.looping"
	PlayerHideDelay        = "player.controls_hide_delay"
	PlayerPollInterval     = "player.poll_interval"
	PlayerViewportWidth    = "player.viewport_width"
	PlayerViewportHeight   = "player.viewport_height"
	PlayerVideoFrameMillis = "player.video_frame_interval"
)

// Frame capture
const (
	CaptureDir       = "capture.dir"
	CaptureFormat    = "capture.format"
	CaptureQuality   = "capture.quality"
	CaptureKeep      = "capture.keep"
	CaptureSerialize = "capture.serialize"
)

// Ambient backdrop
const (
	AmbientEnabled        = "ambient.enabled"
	AmbientDelay          = "ambient.delay"
	AmbientImageFade      = "ambient.image_fade"
	AmbientGradientFade   = "ambient.gradient_fade"
	AmbientCrossfade      = "ambient.crossfade"
	AmbientBlur           = "ambient.blur"
	AmbientGradientColors = "ambient.gradient_colors"
	AmbientGradientAlphas = "ambient.gradient_alphas"
	AmbientDefaultFrame   = "ambient.default_frame"
)

// Crossfade
const (
	CrossfadeDuration = "crossfade.duration"
	CrossfadeReverse  = "crossfade.reverse"
)

// Logs
const (
	LogsPath  = "logs.path"
	LogsLevel = "logs.level"
)
