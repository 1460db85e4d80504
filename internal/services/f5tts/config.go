package f5tts

// Config captures runtime settings for F5-TTS inference.
type Config struct {
	// Command launches the inference tool (normally uvx).
	Command string
	// Package is the Python package uvx installs the CLI from.
	Package string
	// Model is the F5-TTS checkpoint name.
	Model string
	// Device forces a torch device ("cuda", "cpu", "mps"); empty lets F5-TTS choose.
	Device string
	// HFToken is exported as HF_TOKEN for checkpoint downloads.
	HFToken string
	// ExtraArgs are appended verbatim to every invocation.
	ExtraArgs []string
}

// F5-TTS configuration constants.
const (
	DefaultCommand = "uvx"
	DefaultPackage = "f5-tts"
	DefaultModel   = "F5TTS_v1_Base"
	InferCLI       = "f5-tts_infer-cli"
	DefaultNFEStep = 32
	hfTokenEnv     = "HF_TOKEN"
	maxOutputTail  = 2000
)
