package imdraw

import "testing"

func TestAppendCommand(t *testing.T) {
	a := Texture{ID: 1, Width: 16, Height: 16}
	b := Texture{ID: 2, Width: 16, Height: 16}

	tests := []struct {
		name string
		in   []Command
		tex  Texture
		want []Command
	}{
		{
			name: "empty list starts a command",
			in:   nil,
			tex:  a,
			want: []Command{{Texture: a}},
		},
		{
			name: "empty tail is retargeted",
			in:   []Command{{Texture: a, IndexOffset: 0, IndexCount: 6}, {Texture: b, IndexOffset: 6}},
			tex:  NoTexture,
			want: []Command{{Texture: a, IndexCount: 6}, {Texture: NoTexture, IndexOffset: 6}},
		},
		{
			name: "same texture is merged",
			in:   []Command{{Texture: a, IndexCount: 6}},
			tex:  a,
			want: []Command{{Texture: a, IndexCount: 6}},
		},
		{
			name: "texture change after indices starts a command",
			in:   []Command{{Texture: a, IndexCount: 6}},
			tex:  b,
			want: []Command{{Texture: a, IndexCount: 6}, {Texture: b, IndexOffset: 6}},
		},
		{
			name: "handles compare by id",
			in:   []Command{{Texture: a, IndexCount: 3}},
			tex:  Texture{ID: 1},
			want: []Command{{Texture: a, IndexCount: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppendCommand(tt.in, tt.tex)
			if len(got) != len(tt.want) {
				t.Fatalf("AppendCommand() len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i].Texture.ID != tt.want[i].Texture.ID ||
					got[i].IndexOffset != tt.want[i].IndexOffset ||
					got[i].IndexCount != tt.want[i].IndexCount {
					t.Errorf("command %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
