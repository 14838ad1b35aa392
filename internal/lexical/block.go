package lexical

// DefaultFoldMessage is shown in place of a folded block's interior.
const DefaultFoldMessage = "..."

// BlockAlign controls how a block's interior is laid out.
type BlockAlign uint8

const (
	// BlockAlignIndent starts the interior on a new, indented line.
	BlockAlignIndent BlockAlign = iota
	// BlockAlignInline keeps the interior on the current line.
	BlockAlignInline
)

// FoldStatus is the target state for SetFoldStatus.
type FoldStatus uint8

const (
	Folded FoldStatus = iota
	Expanded
	Reverse
)

func (s FoldStatus) String() string {
	switch s {
	case Folded:
		return "folded"
	case Expanded:
		return "expanded"
	case Reverse:
		return "reverse"
	}
	return "unknown"
}

// Block is a contiguous, foldable run of tokens. Nesting is expressed only by
// range containment.
type Block struct {
	TokenStart, TokenEnd int // inclusive token indices
	Align                BlockAlign
	FoldMessage          string
	HasEndMarker         bool // TokenEnd stays visible when folded

	// Layout output.
	LeftHighlightMargin int
	MarkerX, MarkerY    int
}

// Contains reports whether token index i lies in the block's range.
func (b *Block) Contains(i int) bool {
	return i >= b.TokenStart && i <= b.TokenEnd
}

// Encloses reports whether o's range lies within b's range.
func (b *Block) Encloses(o *Block) bool {
	return o.TokenStart >= b.TokenStart && o.TokenEnd <= b.TokenEnd
}

// hiddenRange is the half-open token range hidden when the block is folded:
// everything after the start token, up to and including the end unless the
// end is a marker that stays visible.
func (b *Block) hiddenRange() (from, to int) {
	from = b.TokenStart + 1
	to = b.TokenEnd + 1
	if b.HasEndMarker {
		to = b.TokenEnd
	}
	return from, to
}

// Hides reports whether folding the block hides token i.
func (b *Block) Hides(i int) bool {
	from, to := b.hiddenRange()
	return i >= from && i < to
}

func (b *Block) foldMessage() string {
	if b.FoldMessage != "" {
		return b.FoldMessage
	}
	return DefaultFoldMessage
}
