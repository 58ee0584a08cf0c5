package service

import (
	"errors"

	"campaign_studio/internal/repository"
)

var (
	// ErrImageChainExhausted 降级链中所有图片模型均失败
	ErrImageChainExhausted = errors.New("all image generation models failed")
	// ErrNoGeneration 文案模型返回体中没有生成内容
	ErrNoGeneration = errors.New("no generation returned from text model")
	// ErrEmptyDescription 缺少产品描述
	ErrEmptyDescription = errors.New("description is required")
	// ErrEmptyCaption 保存时缺少文案
	ErrEmptyCaption = errors.New("caption is required")
	// ErrStorageNotConfigured 未配置对象存储
	ErrStorageNotConfigured = errors.New("storage service not configured")

	ErrCampaignExists   = repository.ErrCampaignExists
	ErrCampaignNotFound = repository.ErrCampaignNotFound
)
