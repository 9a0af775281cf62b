package mongodb

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultIndexName 主键索引名
const DefaultIndexName = "_id_"

// IndexInfo listIndexes 返回的索引条目
// 未单独列出的选项保留在 Options 中
type IndexInfo struct {
	Name    string `bson:"name"`
	Key     bson.D `bson:"key"`
	Version int32  `bson:"v,omitempty"`
	Unique  bool   `bson:"unique,omitempty"`
	Options bson.M `bson:",inline"`
}

// ListIndexes 获取集合的索引目录（原始文档，保留键顺序）
// 集合不存在时返回空列表
func ListIndexes(ctx context.Context, coll *mongo.Collection) ([]bson.Raw, error) {
	cursor, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes on %s: %w", coll.Name(), err)
	}
	var specs []bson.Raw
	if err := cursor.All(ctx, &specs); err != nil {
		return nil, fmt.Errorf("read indexes on %s: %w", coll.Name(), err)
	}
	return specs, nil
}

// DecodeIndexes 将原始索引文档解码为 IndexInfo
func DecodeIndexes(specs []bson.Raw) ([]IndexInfo, error) {
	infos := make([]IndexInfo, 0, len(specs))
	for _, spec := range specs {
		var info IndexInfo
		if err := bson.Unmarshal(spec, &info); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// KeysOf 返回索引声明的键（仅支持 bson.D）
func KeysOf(index mongo.IndexModel) bson.D {
	keys, _ := index.Keys.(bson.D)
	return keys
}

// IsUnique 索引声明是否带 unique 选项
func IsUnique(index mongo.IndexModel) bool {
	return index.Options != nil && index.Options.Unique != nil && *index.Options.Unique
}

// IndexName 按服务端默认规则生成索引名，如 user_id_1_status_1
func IndexName(keys bson.D) string {
	parts := make([]string, 0, len(keys)*2)
	for _, e := range keys {
		parts = append(parts, e.Key, fmt.Sprint(e.Value))
	}
	return strings.Join(parts, "_")
}

// FormatKeys 键模式的可读形式，如 user_id:1, status:1
func FormatKeys(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, e := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", e.Key, e.Value))
	}
	return strings.Join(parts, ", ")
}

// SameKeys 判断两个键模式是否相同
// 字段名和顺序必须一致；方向按数值比较，int32/int64/double 视为同一类
func SameKeys(a, b bson.D) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || !sameDirection(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

func sameDirection(a, b interface{}) bool {
	fa, okA := direction(a)
	fb, okB := direction(b)
	if okA && okB {
		return fa == fb
	}
	if okA || okB {
		return false
	}
	// 非数值方向，如 "text"、"2dsphere"
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func direction(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Drift 声明与实际索引目录之间的差异
type Drift struct {
	Collection  string
	Missing     []string // 声明了但目录中不存在
	Conflicting []string // 键相同但 unique 不一致
	Duplicated  []string // 同一键模式在目录中出现多次
	Undeclared  []string // 目录中存在但未声明（不含 _id_）
}

// Clean 声明的索引是否全部就绪
// 未声明的索引不影响结果
func (d *Drift) Clean() bool {
	return len(d.Missing) == 0 && len(d.Conflicting) == 0 && len(d.Duplicated) == 0
}

// Diff 比较声明的索引和实际索引目录
func Diff(collection string, declared []mongo.IndexModel, catalog []IndexInfo) *Drift {
	drift := &Drift{Collection: collection}
	matched := make([]bool, len(catalog))

	for _, index := range declared {
		keys := KeysOf(index)
		name := IndexName(keys)

		hits := 0
		for i, info := range catalog {
			if !SameKeys(keys, info.Key) {
				continue
			}
			matched[i] = true
			hits++
			if info.Unique != IsUnique(index) {
				drift.Conflicting = append(drift.Conflicting, info.Name)
			}
		}

		switch {
		case hits == 0:
			drift.Missing = append(drift.Missing, name)
		case hits > 1:
			drift.Duplicated = append(drift.Duplicated, name)
		}
	}

	for i, info := range catalog {
		if !matched[i] && info.Name != DefaultIndexName {
			drift.Undeclared = append(drift.Undeclared, info.Name)
		}
	}

	return drift
}
