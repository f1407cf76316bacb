package model

// ChannelFiles groups files by destination channel. Channels iterate in the
// order they were first added and files keep their arrival order.
type ChannelFiles struct {
	order []string
	files map[string][]FileInfo
}

func NewChannelFiles() *ChannelFiles {
	return &ChannelFiles{files: make(map[string][]FileInfo)}
}

// Add appends file to channel, creating the channel bucket on first insert.
func (c *ChannelFiles) Add(channel string, file FileInfo) {
	if _, ok := c.files[channel]; !ok {
		c.order = append(c.order, channel)
	}
	c.files[channel] = append(c.files[channel], file)
}

func (c *ChannelFiles) Channels() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func (c *ChannelFiles) Files(channel string) []FileInfo {
	return c.files[channel]
}

func (c *ChannelFiles) Len() int {
	return len(c.order)
}

// FileCount is the total number of files across all channels.
func (c *ChannelFiles) FileCount() int {
	n := 0
	for _, files := range c.files {
		n += len(files)
	}
	return n
}
