// 包 cli：ubigeoctl 命令行，离线校验数据集并执行与 HTTP 接口相同的查询
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ubigeo-api/internal/dataset"
	"ubigeo-api/internal/logger"
	"ubigeo-api/internal/ubigeo"
	"ubigeo-api/internal/version"
)

// options：全局参数
type options struct {
	data     string
	format   string
	jsonOut  bool
	logLevel string
}

// NewRootCmd：构造完整命令树；测试中每次新建以隔离参数状态
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "ubigeoctl",
		Short: "Validate and query Venezuelan UBIGEO datasets",
		Long: `ubigeoctl loads a UBIGEO dataset (Estado / Municipio / Parroquia) from a file,
validates it the same way the API server does, and answers lookups offline.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetupWith(opts.logLevel, "text", cmd.ErrOrStderr())
		},
	}
	root.Version = version.Version
	root.SetVersionTemplate(fmt.Sprintf("ubigeoctl %s\n", version.String()))

	defPath := os.Getenv("DATASET_PATH")
	if defPath == "" {
		defPath = "data/ubigeo_ven.json"
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.data, "data", "d", defPath, "Dataset file")
	pf.StringVarP(&opts.format, "format", "f", dataset.FormatAuto, "Dataset format (auto|nested|json|yaml|csv)")
	pf.BoolVar(&opts.jsonOut, "json", false, "Print JSON instead of styled text")
	pf.StringVar(&opts.logLevel, "log-level", "error", "Log level (debug|info|warn|error)")

	root.AddCommand(
		newValidateCmd(opts),
		newLookupCmd(opts),
		newChildrenCmd(opts),
		newPathCmd(opts),
		newSearchCmd(opts),
		newResolveCmd(opts),
	)
	return root
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (o *options) printer(w io.Writer) printer { return printer{w: w, json: o.jsonOut} }

// loadIndex：读取 --data 指定的数据集并构建索引
func (o *options) loadIndex(ctx context.Context) (*ubigeo.Index, error) {
	src, err := dataset.FileSource(o.data, o.format)
	if err != nil {
		return nil, err
	}
	return dataset.Load(ctx, src)
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a dataset and print every problem found",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.data
			if len(args) == 1 {
				path = args[0]
			}
			return validate(cmd.Context(), cmd.OutOrStdout(), path, opts.format)
		},
	}
}

// validate：逐条打印解析与构建缺陷；存在缺陷时返回错误（退出码非零）
func validate(ctx context.Context, w io.Writer, path, format string) error {
	src, err := dataset.FileSource(path, format)
	if err != nil {
		return err
	}
	recs, err := src.Records(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, titleStyle.Render(src.Name())+" "+dimStyle.Render(fmt.Sprintf("%d record(s)", len(recs))))
	ents, err := ubigeo.Parse(recs)
	if err == nil {
		var idx *ubigeo.Index
		idx, err = ubigeo.Build(ents)
		if err == nil {
			st := idx.Stats()
			fmt.Fprintf(w, "%s version %s: %d estados, %d municipios, %d parroquias\n",
				successStyle.Render("ok"), idx.Version(), st.Estados, st.Municipios, st.Parroquias)
			return nil
		}
	}
	var n int
	var perrs ubigeo.ParseErrors
	var berrs ubigeo.BuildErrors
	switch {
	case errors.As(err, &perrs):
		for _, e := range perrs {
			fmt.Fprintln(w, errorStyle.Render("parse")+" "+e.Error())
		}
		n = len(perrs)
	case errors.As(err, &berrs):
		for _, e := range berrs {
			fmt.Fprintln(w, errorStyle.Render("build")+" "+e.Error())
		}
		n = len(berrs)
	default:
		return err
	}
	return fmt.Errorf("%s: %d problem(s) found", path, n)
}

func newLookupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <code>",
		Short: "Show the entity with the given code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := opts.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			e, err := idx.GetByCode(args[0])
			if err != nil {
				return err
			}
			p := opts.printer(cmd.OutOrStdout())
			return p.emit(e, func() { p.entityLine(e) })
		},
	}
}

func newChildrenCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "children <code>",
		Short: "List the direct children of an Estado or Municipio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := opts.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			es, err := idx.ChildrenOf(args[0])
			if err != nil {
				return err
			}
			return opts.printer(cmd.OutOrStdout()).entities("children of "+args[0], es)
		},
	}
}

func newPathCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "path <code>",
		Short: "Show the full Estado / Municipio / Parroquia path of a code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := opts.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			pt, err := idx.FullPath(args[0])
			if err != nil {
				return err
			}
			return opts.printer(cmd.OutOrStdout()).path(pt)
		},
	}
}

func newSearchCmd(opts *options) *cobra.Command {
	var level string
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search entities by name (case and accent insensitive)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var levels []ubigeo.Level
			if level != "" {
				lv, ok := ubigeo.ParseLevel(level)
				if !ok {
					return &ubigeo.InvalidQueryError{Param: "level", Value: level, Reason: "expected ESTADO, MUNICIPIO or PARROQUIA"}
				}
				levels = append(levels, lv)
			}
			idx, err := opts.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			q := ""
			if len(args) == 1 {
				q = args[0]
			}
			es, err := idx.SearchByName(q, levels...)
			if err != nil {
				return err
			}
			if limit > 0 && len(es) > limit {
				es = es[:limit]
			}
			return opts.printer(cmd.OutOrStdout()).entities(fmt.Sprintf("search %q", q), es)
		},
	}
	cmd.Flags().StringVarP(&level, "level", "l", "", "Restrict to a level (estado|municipio|parroquia)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (0 = unlimited)")
	return cmd
}

func newResolveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <estado> [municipio] [parroquia]",
		Short: "Resolve a path from names",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := opts.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			names := append(append([]string{}, args...), "", "")
			pt, err := idx.ResolveNames(names[0], names[1], names[2])
			if err != nil {
				return err
			}
			return opts.printer(cmd.OutOrStdout()).path(pt)
		},
	}
}
