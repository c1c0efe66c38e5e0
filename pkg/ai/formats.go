package ai

import "strings"

// GoogleContentType maps a Google audioEncoding to the MIME type of the audio
// it returns. LINEAR16, MULAW and ALAW responses carry a WAV header.
func GoogleContentType(encoding string) string {
	switch strings.ToUpper(encoding) {
	case "LINEAR16", "MULAW", "ALAW":
		return "audio/wav"
	case "OGG_OPUS":
		return "audio/ogg"
	case "PCM":
		return "audio/L16"
	default:
		return "audio/mpeg"
	}
}

// ElevenLabsContentType maps an ElevenLabs output_format such as
// "mp3_44100_128", "pcm_16000" or "ulaw_8000" to a MIME type
func ElevenLabsContentType(outputFormat string) string {
	codec, rate, _ := strings.Cut(strings.ToLower(outputFormat), "_")
	switch codec {
	case "pcm":
		if rate != "" {
			return "audio/L16; rate=" + rate
		}
		return "audio/L16"
	case "ulaw":
		return "audio/basic"
	case "alaw":
		return "audio/x-alaw-basic"
	case "opus":
		return "audio/ogg"
	default:
		return "audio/mpeg"
	}
}

// AudioExtension returns the file extension used when serving audio of the
// given content type
func AudioExtension(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch strings.TrimSpace(mediaType) {
	case "audio/mpeg":
		return "mp3"
	case "audio/wav":
		return "wav"
	case "audio/ogg":
		return "ogg"
	case "audio/basic":
		return "ulaw"
	case "audio/x-alaw-basic":
		return "alaw"
	default:
		return "raw"
	}
}
