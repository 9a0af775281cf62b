package questionnaire

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"qindex/internal/pkg/mongodb"
)

// UserMetadata 认证系统用户与公司的关联信息
// ID 直接使用认证系统的用户ID（sub）
type UserMetadata struct {
	ID           string             `bson:"_id" json:"id"`
	CompanyID    primitive.ObjectID `bson:"company_id" json:"company_id"`
	SupervisorID string             `bson:"supervisor_id,omitempty" json:"supervisor_id,omitempty"` // 上级的用户ID
	Department   string             `bson:"department,omitempty" json:"department,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (u *UserMetadata) Collection() string {
	return CollectionUsersMetadata
}

// IndexModels 用户元数据索引
func (u *UserMetadata) IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{asc("company_id")}},
		{Keys: bson.D{asc("supervisor_id")}},
		{Keys: bson.D{asc("company_id"), asc("department")}},
		{Keys: bson.D{asc("department")}},
		{Keys: bson.D{desc("created_at")}},
	}
}

// EnsureIndexes 创建和维护索引
func (u *UserMetadata) EnsureIndexes(ctx context.Context, db *mongo.Database) ([]string, error) {
	return mongodb.CreateIndexes(ctx, db.Collection(u.Collection()), u.IndexModels())
}
