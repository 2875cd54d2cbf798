package engine

// Paylines is the fixed set of 14 five-cell paths. Each entry lists the
// row occupied in columns 0..4, left to right: four straights, V and
// inverted-V shapes, and zig-zags across the 4 rows. Lines are
// evaluated independently with no precedence between them.
var Paylines = [14][Cols]int{
	{0, 0, 0, 0, 0}, // top row
	{1, 1, 1, 1, 1},
	{2, 2, 2, 2, 2},
	{3, 3, 3, 3, 3}, // bottom row
	{0, 1, 2, 1, 0}, // shallow V
	{1, 2, 3, 2, 1}, // deep V
	{3, 2, 1, 2, 3}, // shallow inverted V
	{2, 1, 0, 1, 2}, // deep inverted V
	{0, 1, 0, 1, 0}, // zig-zags
	{1, 0, 1, 0, 1},
	{2, 3, 2, 3, 2},
	{3, 2, 3, 2, 3},
	{1, 2, 1, 2, 1},
	{2, 1, 2, 1, 2},
}

// PaylineCount is the number of fixed paylines.
const PaylineCount = len(Paylines)
