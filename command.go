package imdraw

// Command is a contiguous run of indices drawn with one texture binding.
// IndexCount is a multiple of 3 once the owning list is committed.
type Command struct {
	Texture     Texture
	IndexOffset uint32
	IndexCount  uint32
}

// End returns the index one past the command's range.
func (c Command) End() uint32 {
	return c.IndexOffset + c.IndexCount
}

// AppendCommand returns cmds with a tail command that draws with tex.
//
// A new command is started only when tex differs from the tail's texture
// and the tail already has indices. An empty tail is retargeted to tex
// instead of being followed by another command.
func AppendCommand(cmds []Command, tex Texture) []Command {
	n := len(cmds)
	if n == 0 {
		return append(cmds, Command{Texture: tex})
	}
	tail := &cmds[n-1]
	if tail.IndexCount == 0 {
		tail.Texture = tex
		return cmds
	}
	if tail.Texture.Same(tex) {
		return cmds
	}
	return append(cmds, Command{Texture: tex, IndexOffset: tail.End()})
}
