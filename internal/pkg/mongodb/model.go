package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Model MongoDB 模型接口
// 所有需要管理索引的模型都应该实现这个接口
type Model interface {
	// Collection 返回集合名称
	Collection() string

	// IndexModels 返回声明的索引，顺序即创建顺序
	IndexModels() []mongo.IndexModel

	// EnsureIndexes 创建和维护索引
	// 返回: 服务端返回的索引名（按声明顺序）和错误信息
	EnsureIndexes(ctx context.Context, db *mongo.Database) ([]string, error)
}

// CreateIndexes 辅助函数：逐个创建索引
// 每个索引单独发送 createIndexes 命令并等待返回，遇到错误立即停止，
// 已创建的索引保留，之后的索引不再尝试
func CreateIndexes(ctx context.Context, coll *mongo.Collection, indexes []mongo.IndexModel) ([]string, error) {
	names := make([]string, 0, len(indexes))
	for _, index := range indexes {
		name, err := CreateIndex(ctx, coll, index)
		if err != nil {
			return names, fmt.Errorf("create index {%s} on %s: %w",
				FormatKeys(KeysOf(index)), coll.Name(), err)
		}
		names = append(names, name)
	}
	return names, nil
}

// CreateIndex 辅助函数：创建单个索引
// 索引已存在（键和选项相同）时服务端不做任何修改
func CreateIndex(ctx context.Context, coll *mongo.Collection, index mongo.IndexModel) (string, error) {
	return coll.Indexes().CreateOne(ctx, index)
}
