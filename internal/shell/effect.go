package shell

// Block names a region of the terminal page that is hidden at load and
// revealed by the startup sequence.
type Block string

const (
	BlockInitialCommand   Block = "initial-command"
	BlockErrorOutput      Block = "error-output"
	BlockSuggestedActions Block = "suggested-actions"
	BlockInputLine        Block = "input-line"
)

// EffectType identifies a rendering instruction.
type EffectType string

const (
	EffectAppendEcho   EffectType = "append_echo"
	EffectAppendResult EffectType = "append_result"
	EffectClearOutput  EffectType = "clear_output"
	EffectReveal       EffectType = "reveal"
	EffectHide         EffectType = "hide"
	EffectFocus        EffectType = "focus"
	EffectSetInput     EffectType = "set_input"
	EffectScroll       EffectType = "scroll_bottom"
	EffectNavigate     EffectType = "navigate"
	EffectReload       EffectType = "reload"
	EffectTranslate    EffectType = "translate"
	EffectScramble     EffectType = "scramble"
)

// Effect is one instruction for the rendering surface. Only the fields
// relevant to Type are set.
type Effect struct {
	Type  EffectType `json:"type"`
	HTML  string     `json:"html,omitempty"`
	Block Block      `json:"block,omitempty"`
	URL   string     `json:"url,omitempty"`
	Value string     `json:"value,omitempty"`
	Caret int        `json:"caret,omitempty"`
	Key   string     `json:"key,omitempty"`
	X     float64    `json:"x,omitempty"`
	Y     float64    `json:"y,omitempty"`
}

// Surface receives effects in the order the session produces them. Apply is
// called with the session lock held and must not call back into the session.
type Surface interface {
	Apply(Effect)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(Effect)

// Apply implements Surface.
func (f SurfaceFunc) Apply(e Effect) { f(e) }

type nopSurface struct{}

func (nopSurface) Apply(Effect) {}
