package mdpage

// Block is a classified unit of Markdown structure.
type Block struct {
	Kind  BlockKind
	Level int
	Text  string
	Items []string
}

// BlockKind tags the variant held by a Block.
type BlockKind uint8

const (
	// BlockParagraph is one or more consecutive text lines joined by a space.
	BlockParagraph BlockKind = iota
	// BlockHeading is a single ATX heading line, Level 1 through 6.
	BlockHeading
	// BlockList is a run of consecutive "-" or "*" bulleted lines.
	BlockList
)

func (k BlockKind) String() string {
	switch k {
	case BlockHeading:
		return "heading"
	case BlockParagraph:
		return "paragraph"
	case BlockList:
		return "list"
	default:
		return "unknown"
	}
}

// Heading returns a heading block.
func Heading(level int, text string) Block {
	return Block{Kind: BlockHeading, Level: level, Text: text}
}

// Paragraph returns a paragraph block.
func Paragraph(text string) Block {
	return Block{Kind: BlockParagraph, Text: text}
}

// List returns a list block holding items in order.
func List(items ...string) Block {
	return Block{Kind: BlockList, Items: items}
}
