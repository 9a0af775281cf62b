package questionnaire

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"qindex/internal/pkg/mongodb"
)

// Company 公司实体
type Company struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (c *Company) Collection() string {
	return CollectionCompanies
}

// IndexModels 公司索引：按名称查找，按创建时间倒序列表
func (c *Company) IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{asc("name")}},
		{Keys: bson.D{desc("created_at")}},
	}
}

// EnsureIndexes 创建和维护索引
func (c *Company) EnsureIndexes(ctx context.Context, db *mongo.Database) ([]string, error) {
	return mongodb.CreateIndexes(ctx, db.Collection(c.Collection()), c.IndexModels())
}
