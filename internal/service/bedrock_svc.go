package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// ModelInvoker 调用托管模型，body 与返回值均为模型原生 JSON
type ModelInvoker interface {
	InvokeModel(ctx context.Context, modelID string, body []byte) ([]byte, error)
}

// AWSCredentials Bedrock 与 S3 共用
type AWSCredentials struct {
	Region    string
	AccessKey string
	SecretKey string
}

// loadAWSConfig 未配置 AK/SK 时走默认凭证链 (环境变量、IAM Role 等)
func loadAWSConfig(ctx context.Context, cred AWSCredentials) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cred.Region),
	}
	if cred.AccessKey != "" && cred.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cred.AccessKey, cred.SecretKey, ""),
		))
	}
	return config.LoadDefaultConfig(ctx, opts...)
}

// ==================== Bedrock 实现 ====================

// BedrockInvoker 基于 Bedrock Runtime InvokeModel
type BedrockInvoker struct {
	client *bedrockruntime.Client
}

// NewBedrockInvoker 创建 Bedrock 调用器，客户端可跨请求复用
func NewBedrockInvoker(ctx context.Context, cred AWSCredentials) (*BedrockInvoker, error) {
	awsCfg, err := loadAWSConfig(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %w", err)
	}
	return &BedrockInvoker{client: bedrockruntime.NewFromConfig(awsCfg)}, nil
}

func (b *BedrockInvoker) InvokeModel(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("调用模型 %s 失败: %w", modelID, err)
	}
	return out.Body, nil
}
