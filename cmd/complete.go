package cmd

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors are the completions of flag values, by flag name.
var flagPredictors = map[string]complete.Predictor{
	"format": predict.Set{"md", "html", "json"},
	"o":      predict.Files("*"),
	"record": predict.Files("*.json"),
	"config": predict.Files("*.toml"),
}

// Completion returns the shell completion of the fol command line, global
// flags are taken from global.
func Completion(global *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: predictFlags(global),
	}
	for _, c := range commands() {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{
			Flags: predictFlags(fs),
			Args:  predict.Files("*.csv"),
		}
	}
	return root
}

func predictFlags(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if p, ok := flagPredictors[f.Name]; ok {
			flags[f.Name] = p
			return
		}
		flags[f.Name] = predict.Nothing
	})
	return flags
}
