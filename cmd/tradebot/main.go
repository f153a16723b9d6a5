// Command tradebot runs the Discord trade journal and its maintenance tools.
//
// Usage:
//
//	tradebot serve [--config bot.yaml]
//	tradebot migrate
//	tradebot stats --user 123456789012345678
//	tradebot render --user 123456789012345678 --kind equity --out equity.png
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
