package trafficking

// ClassifyAutomationTier returns the engine version that covers a platform
// and mapped channel pairing. CM360 splits by channel while the DSPs map one
// to one; anything unrecognized falls back to the base V1 tier.
func ClassifyAutomationTier(platform, channelMapped string) string {
	switch platform {
	case "CM360":
		switch channelMapped {
		case "ProgAudio", "ProgCTV", "ProgNative":
			return "V2.2"
		case "YouTube":
			return "V2.1"
		}
	case "Yahoo DSP":
		return "V2"
	case "Amazon DSP":
		return "V3"
	case "DV360":
		return "V1"
	}
	return "V1"
}
