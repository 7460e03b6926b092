package roommgr

import (
	"fmt"
	"math/rand"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// randomDigit returns a random ASCII digit as a rune.
func randomDigit() rune {
	return rune('0' + (rand.Uint32() % 10))
}

// randomRoomID generates a random four-digit room code, in the teacher's
// lobby-code style.
func randomRoomID() string {
	return string([]rune{randomDigit(), randomDigit(), randomDigit(), randomDigit()})
}

var nameAdjectives = []string{
	"swift", "crimson", "azure", "silent", "rusty", "feral", "lucky",
	"grim", "bold", "stray", "wild", "clever", "sly", "lone", "iron",
}

var nameNouns = []string{
	"falcon", "badger", "comet", "wolf", "viper", "hawk", "otter",
	"raven", "lynx", "mantis", "jackal", "panther", "sparrow", "cobra",
}

// randomDisplayName generates a fresh two-word display name for a player
// who didn't supply one, title-cased the way a generated name should read
// in a scoreboard.
func randomDisplayName() string {
	adj := nameAdjectives[int(rand.Uint32())%len(nameAdjectives)]
	noun := nameNouns[int(rand.Uint32())%len(nameNouns)]

	return titleCaser.String(adj) + titleCaser.String(noun)
}

// randomPlayerID generates an id unique enough to key a room's player map
// without needing a central counter.
func randomPlayerID() string {
	return fmt.Sprintf("%08x", rand.Uint32())
}
