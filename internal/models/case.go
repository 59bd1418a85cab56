package models

// Case is a murder mystery: the rooms of the crime scene, the suspects, and the clues that implicate them.
type Case struct {
	ID       string    `yaml:"id" db:"id"`
	Title    string    `yaml:"title" db:"title"`
	Synopsis string    `yaml:"synopsis" db:"synopsis"`
	Entry    string    `yaml:"entry" db:"entry"`
	Rooms    []Room    `yaml:"rooms"`
	Suspects []Suspect `yaml:"suspects"`
}

// Room is a location of the crime scene. Left and Right name the rooms behind its passages.
type Room struct {
	Name  string `yaml:"name" db:"name"`
	Clue  string `yaml:"clue,omitempty" db:"clue"`
	Left  string `yaml:"left,omitempty" db:"left_room"`
	Right string `yaml:"right,omitempty" db:"right_room"`
}

// Suspect is a person that can be accused. Clues lists the clues that implicate them.
type Suspect struct {
	Name   string   `yaml:"name" db:"name"`
	Motive string   `yaml:"motive" db:"motive"`
	Clues  []string `yaml:"clues"`
}

// CaseSummary is a row of the case library listing.
type CaseSummary struct {
	ID       string `db:"id"`
	Title    string `db:"title"`
	Rooms    int    `db:"rooms"`
	Suspects int    `db:"suspects"`
}
