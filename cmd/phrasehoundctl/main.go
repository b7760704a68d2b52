// phrasehoundctl is the offline companion of the phrasehound bot: it runs
// the phrase match engine against pasted text, for tuning gap tolerance and
// the fuzzy threshold without touching Telegram or Telemetr.
package main

import (
	"os"

	"github.com/huntline/phrasehound/cmd/phrasehoundctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
