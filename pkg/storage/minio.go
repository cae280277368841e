// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"converso-go/internal/config"
	"converso-go/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient 是一个全局的 MinIO 客户端实例。
var MinioClient *minio.Client

// InitMinIO 初始化 MinIO 客户端并确保指定的存储桶存在。
func InitMinIO(cfg config.MinIOConfig) {
	var err error

	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("初始化 MinIO 客户端失败", err)
	}

	log.Info("MinIO 客户端初始化成功")

	// 检查存储桶是否存在，如果不存在则创建
	ctx := context.Background()
	bucketName := cfg.BucketName
	exists, err := MinioClient.BucketExists(ctx, bucketName)
	if err != nil {
		log.Fatal("检查 MinIO 存储桶失败", err)
	}

	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", bucketName)
		err = MinioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			log.Fatal("创建 MinIO 存储桶失败", err)
		}
		log.Infof("存储桶 '%s' 创建成功", bucketName)
	} else {
		log.Infof("存储桶 '%s' 已存在", bucketName)
	}
}

// transcriptObjectName 返回某次会话的转录文本在存储桶中的对象名。
func transcriptObjectName(sessionID uint) string {
	return fmt.Sprintf("transcripts/%d.json", sessionID)
}

// PutTranscript 将一次语音会话的转录 JSON 归档到对象存储。
func PutTranscript(ctx context.Context, bucketName string, sessionID uint, data []byte) error {
	_, err := MinioClient.PutObject(ctx, bucketName, transcriptObjectName(sessionID),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		log.Errorf("归档会话转录失败: session=%d, err=%v", sessionID, err)
		return err
	}
	return nil
}

// TranscriptStore 把全局 MinIO 客户端适配成转录归档接口，
// 绑定配置的存储桶与预签名地址有效期。
type TranscriptStore struct {
	Bucket    string
	URLExpiry time.Duration
}

// NewTranscriptStore 创建一个新的 TranscriptStore。
func NewTranscriptStore(bucket string, urlExpiry time.Duration) *TranscriptStore {
	return &TranscriptStore{Bucket: bucket, URLExpiry: urlExpiry}
}

// Put 归档一次会话的转录 JSON。
func (s *TranscriptStore) Put(ctx context.Context, sessionID uint, data []byte) error {
	return PutTranscript(ctx, s.Bucket, sessionID, data)
}

// URL 生成转录对象的预签名下载地址。
func (s *TranscriptStore) URL(sessionID uint) (string, error) {
	return GetTranscriptURL(s.Bucket, sessionID, s.URLExpiry)
}

// GetTranscriptURL generates a presigned URL for a session transcript object.
func GetTranscriptURL(bucketName string, sessionID uint, expiry time.Duration) (string, error) {
	presignedURL, err := MinioClient.PresignedGetObject(context.Background(), bucketName,
		transcriptObjectName(sessionID), expiry, nil)
	if err != nil {
		log.Errorf("Error generating presigned URL: %s", err)
		return "", err
	}
	return presignedURL.String(), nil
}
