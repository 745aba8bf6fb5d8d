package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PaperTsar/javasema/java/classpath"
	"github.com/PaperTsar/javasema/java/symbols"
)

func newClasspathCmd() *cobra.Command {
	var listNames bool
	var resolve []string
	var dropCache bool

	cmd := &cobra.Command{
		Use:   "classpath",
		Short: "Index the configured classpath and query it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dropCache {
				cache, err := classpath.OpenCache()
				if err != nil {
					return err
				}
				return cache.DropAll()
			}

			entries, err := classpathEntries()
			if err != nil {
				return err
			}
			entries = append(entries, args...)
			if len(entries) == 0 {
				return fmt.Errorf("no classpath configured; pass entries or set --classpath/--lib")
			}

			opts := []classpath.Option{}
			if cache, err := classpath.OpenCache(); err == nil {
				opts = append(opts, classpath.WithCache(cache))
			}
			ix, err := classpath.Scan(entries, opts...)
			if err != nil && (ix == nil || ix.Len() == 0) {
				return err
			}
			if err != nil {
				log.Warningf("classpath partially indexed: %s", err)
			}
			defer ix.Close()

			fmt.Printf("%d classes across %d entries\n", ix.Len(), len(entries))
			if listNames {
				for _, name := range ix.Names() {
					fmt.Println(name)
				}
			}

			if len(resolve) > 0 {
				ts := symbols.NewTypeSystem(ix)
				for _, name := range resolve {
					sym := ts.ResolveClassFromCanonicalName(name)
					if sym == nil {
						fmt.Printf("%s: not found\n", name)
						continue
					}
					fmt.Printf("%s: %s, %d fields, %d methods, %d constructors\n",
						name, sym.Kind, len(sym.Fields), len(sym.Methods), len(sym.Constructors))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&listNames, "names", false, "list every indexed binary name")
	cmd.Flags().StringSliceVar(&resolve, "resolve", nil, "load the named classes and print their shape")
	cmd.Flags().BoolVar(&dropCache, "drop-cache", false, "delete the on-disk archive index cache and exit")
	return cmd
}
