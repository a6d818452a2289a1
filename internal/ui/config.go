package ui

// Config contains window/input related settings for the host app.
type Config struct {
	Title   string // window title
	Scale   int    // integer upscaling factor
	ROMsDir string // directory to browse for cartridge images
	Trace   bool   // stored only; App does not read it or pass it to the chassis
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "lynxgo"
	}
	if c.Scale <= 0 {
		c.Scale = 4
	}
	if c.ROMsDir == "" {
		c.ROMsDir = "roms"
	}
}
