package main

import (
	"fmt"
	"os"

	"github.com/pageza/foodgram/backend/cmd/manage/cli"
)

func main() {
	root := cli.NewRootCommand()

	root.AddCommand(cli.NewMigrateCommand())
	root.AddCommand(cli.NewImportCommand())
	root.AddCommand(cli.NewStorageCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
