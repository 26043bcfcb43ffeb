package sink

import (
	"encoding/json"

	"github.com/matzehuels/treewalk/pkg/diagram"
)

type jsonOutput struct {
	*diagram.Scene
	States map[string]diagram.State `json:"states,omitempty"`
}

// RenderJSON exports the scene, including the current visual state of
// every node.
func RenderJSON(sc *diagram.Scene) ([]byte, error) {
	if sc == nil {
		sc = &diagram.Scene{}
	}
	out := jsonOutput{Scene: sc}
	if len(sc.Circles) > 0 {
		out.States = make(map[string]diagram.State, len(sc.Circles))
		for id, st := range sc.States() {
			out.States[string(id)] = st
		}
	}
	return json.MarshalIndent(out, "", "  ")
}
