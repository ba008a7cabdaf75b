package cli

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	msgRegistered     = "%d registered commands:\n"
	msgUnaliased      = "Cleared aliases for %d commands\n"
	msgRemovedLibrary = "Removed %s\n"
)

func init() {
	for key, one := range map[string]string{
		msgRegistered: "1 registered command:\n",
		msgUnaliased:  "Cleared aliases for 1 command\n",
	} {
		if err := message.Set(language.English, key, plural.Selectf(1, "%d",
			"=1", one,
			"other", key,
		)); err != nil {
			panic(err)
		}
	}
}

func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}
