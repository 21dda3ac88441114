package core

// ClearMode selects what is erased before text is drawn
type ClearMode uint8

const (
	ClearNot   ClearMode = 1 // Draw over existing content
	ClearLocal ClearMode = 2 // Erase the text field only
	ClearLine  ClearMode = 3 // Erase from the column to the end of the row
)

// DisplayPort renders text on the character grid of the display.
// fieldLen 0 means the length of text.
type DisplayPort interface {
	Text(text string, fieldLen, row, col int, mode ClearMode)
	Clear()
}
