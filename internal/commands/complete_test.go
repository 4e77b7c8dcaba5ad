package commands

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestHandler_Complete(t *testing.T) {
	tests := map[string]struct {
		line    string
		setup   []string
		expList string
	}{
		"roots":             {line: "", expList: "game,coord"},
		"root prefix":       {line: "/co", expList: "coord"},
		"verbs":             {line: "game s", expList: "start,stop,script"},
		"game names":        {line: "game start ", expList: "sample"},
		"map ids":           {line: "game edit sample ", expList: "arena"},
		"unknown game":      {line: "game start other ", expList: ""},
		"script ids":        {line: "game script sample ", expList: "main"},
		"script action":     {line: "game script sample main ", expList: "execute"},
		"past last arg":     {line: "game script sample main execute ", expList: ""},
		"no completer":      {line: "game list ", expList: ""},
		"live ids":          {line: "game stop ", setup: []string{"game start sample arena"}, expList: "0"},
		"modes":             {line: "coord capture ", expList: "block,entity"},
		"mode prefix":       {line: "coord list E", expList: "entity"},
		"tags not editing":  {line: "coord tp ", expList: ""},
		"tags":              {line: "coord tp ", setup: []string{"game edit sample arena"}, expList: "chest,spawn"},
		"tags by mode":      {line: "coord capture entity ", setup: []string{"game edit sample arena"}, expList: "spawn"},
		"capture indices":   {line: "coord tp spawn ", setup: []string{"game edit sample arena"}, expList: "0,1"},
		"remove map ids":    {line: "coord remove chest ", setup: []string{"game edit sample arena"}, expList: "arena"},
		"unknown root verb": {line: "nope ", expList: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			a := newFakeActor()
			for _, line := range tt.setup {
				f.run(a, line)
			}

			got := f.handler.Complete(a, tt.line)
			testutil.AssertEqual(t, "candidates", strings.Join(got, ","), tt.expList)
		})
	}
}
