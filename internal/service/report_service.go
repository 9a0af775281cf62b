package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"qindex/internal/pkg/mongodb"
)

// Report 打印集合的索引目录，collections 为空时打印全部
// 只读操作
func (s *ProvisionService) Report(ctx context.Context, collections ...string) error {
	models, err := s.selectModels(collections)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out, "\n===== Index Summary =====")
	for _, m := range models {
		specs, err := mongodb.ListIndexes(ctx, s.db.Collection(m.Collection()))
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "\n%s indexes:\n", m.Collection())
		if err := writeIndexJSON(s.out, specs); err != nil {
			return fmt.Errorf("print indexes for %s: %w", m.Collection(), err)
		}
	}
	return nil
}

// writeIndexJSON 以缩进的 relaxed Extended JSON 数组输出，保留键顺序
func writeIndexJSON(w io.Writer, specs []bson.Raw) error {
	if len(specs) == 0 {
		_, err := fmt.Fprintln(w, "[]")
		return err
	}
	fmt.Fprintln(w, "[")
	for i, spec := range specs {
		data, err := bson.MarshalExtJSONIndent(spec, false, false, "  ", "  ")
		if err != nil {
			return err
		}
		sep := ","
		if i == len(specs)-1 {
			sep = ""
		}
		fmt.Fprintf(w, "  %s%s\n", data, sep)
	}
	_, err := fmt.Fprintln(w, "]")
	return err
}

// Verify 对比声明和实际索引目录
// 声明的索引缺失、冲突或重复时返回 ErrDrift，未声明的索引只输出警告
func (s *ProvisionService) Verify(ctx context.Context) ([]*mongodb.Drift, error) {
	drifts := make([]*mongodb.Drift, 0, len(s.models))
	clean := true

	for _, m := range s.models {
		catalog, err := s.catalog(ctx, m.Collection())
		if err != nil {
			return nil, err
		}
		declared := m.IndexModels()
		drift := mongodb.Diff(m.Collection(), declared, catalog)
		drifts = append(drifts, drift)

		writeDrift(s.out, drift, len(declared))
		if !drift.Clean() {
			clean = false
			log.Warn().
				Str("collection", drift.Collection).
				Strs("missing", drift.Missing).
				Strs("conflicting", drift.Conflicting).
				Strs("duplicated", drift.Duplicated).
				Msg("index drift detected")
		}
	}

	if !clean {
		return drifts, ErrDrift
	}
	return drifts, nil
}

func writeDrift(w io.Writer, drift *mongodb.Drift, declared int) {
	if drift.Clean() && len(drift.Undeclared) == 0 {
		fmt.Fprintf(w, "%s: ok (%d declared)\n", drift.Collection, declared)
		return
	}
	fmt.Fprintf(w, "%s:\n", drift.Collection)
	for _, name := range drift.Missing {
		fmt.Fprintf(w, "  missing      %s\n", name)
	}
	for _, name := range drift.Conflicting {
		fmt.Fprintf(w, "  conflicting  %s (unique option differs)\n", name)
	}
	for _, name := range drift.Duplicated {
		fmt.Fprintf(w, "  duplicated   %s\n", name)
	}
	for _, name := range drift.Undeclared {
		fmt.Fprintf(w, "  undeclared   %s (warning)\n", name)
	}
}

// WritePlan 输出声明表，不访问数据库
func WritePlan(w io.Writer, models ...mongodb.Model) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tNAME\tKEYS\tOPTIONS")
	total := 0
	for _, m := range models {
		for _, index := range m.IndexModels() {
			keys := mongodb.KeysOf(index)
			var opts []string
			if mongodb.IsUnique(index) {
				opts = append(opts, "unique")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				m.Collection(), mongodb.IndexName(keys), mongodb.FormatKeys(keys), strings.Join(opts, ","))
			total++
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d indexes on %d collections\n", total, len(models))
	return err
}
