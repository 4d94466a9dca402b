package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	// Doctor / diagnostics
	IconDoctor  = "" // stethoscope
	IconCheck   = "" // check
	IconX       = "" // x
	IconWarning = "" // warning
	IconInfo    = "" // info
	IconDesktop = "" // desktop

	// Audio / daemon state
	IconAudio = "" // volume-up
	IconMute  = "" // volume-off
	IconMoon  = "" // moon (idle allowed)
	IconSun   = "" // sun (idle inhibited)
	IconClock = "" // clock
	IconPlay  = "" // play (running)
	IconStop  = "" // stop (exited)
)
