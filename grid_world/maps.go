package grid_world

// The planning demo maps: each is a 6x6 room with partial walls on rows 1 and 3,
// progressively closing corridors until the far corner is sealed off in the last one.
var DemoGrids = [][]string{
	{
		"......",
		".####.",
		"......",
		".##.#.",
		"..#.#.",
		"......",
	},
	{
		".....#",
		".####.",
		"......",
		".##.#.",
		"..#.#.",
		"......",
	},
	{
		".....#",
		".####.",
		"....#.",
		".##.#.",
		"..#.#.",
		"......",
	},
	{
		".....#",
		".####.",
		"....#.",
		".##...",
		"..#.#.",
		"......",
	},
	{
		".....#",
		".####.",
		"....#.",
		".##.#.",
		"..#.#.",
		"....#.",
	},
}

// SimMap is the default 10x10 room used by the simulation when no map is configured.
var SimMap = []string{
	"..........",
	"..........",
	"...###....",
	"..........",
	"......#...",
	"......#...",
	"..........",
	".##.......",
	"..........",
	"..........",
}
