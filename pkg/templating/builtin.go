package templating

import (
	"github.com/CTAG07/Cadenza/pkg/chord"
)

// ProgressionData is the value passed to every template.
type ProgressionData struct {
	RunID  string        // Identifier of the generation run
	Mode   string        // The command that produced the chords: generate, interpolate or loop
	Source string        // Name of the corpus progression or file the model was built from
	Seed   uint64        // Seed of the random source
	Chords []chord.Chord // The generated progression
}

// builtinTemplates are always available, user templates may override them by name.
var builtinTemplates = map[string]string{
	"plain":    `{{.Chords | join " "}}` + "\n",
	"numbered": `{{range $i, $c := .Chords}}{{inc $i}}. {{$c}}` + "\n" + `{{end}}`,
	"notes":    `{{range .Chords}}{{.}}:{{range notes .}} {{noteName .}}{{end}}` + "\n" + `{{end}}`,
	"names":    `{{range .Chords}}{{names . | joinStrings " / "}}` + "\n" + `{{end}}`,
	"verbose": `# run={{.RunID}} mode={{.Mode}} source={{.Source}} seed={{.Seed}} length={{len .Chords}}` + "\n" +
		`{{.Chords | join " | "}}` + "\n",
}
