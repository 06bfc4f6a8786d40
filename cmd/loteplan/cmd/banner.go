package cmd

import (
	"fmt"
)

const banner = `
  _           _             _
 | |    ___  | |_ ___ _ __ | | __ _ _ __
 | |   / _ \ | __/ _ \ '_ \| |/ _` + "`" + ` | '_ \
 | |__| (_) || ||  __/ |_) | | (_| | | | |
 |_____\___/  \__\___| .__/|_|\__,_|_| |_|
                     |_|
`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Loteplan Client - Version %s\x1b[0m\n\n", Version)
}
