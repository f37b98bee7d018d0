package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/creatorlink/socialsync/configs"
	"github.com/creatorlink/socialsync/internal/repository"
	"github.com/creatorlink/socialsync/internal/transfer"
)

// ReportService assembles the daily operational report and archives it as
// JSON in R2 object storage.
type ReportService interface {
	Generate(ctx context.Context) (*transfer.SyncReport, error)
}

type reportService struct {
	config   cfg.Config
	accounts repository.SocialAccountRepository
	sync     SyncService
}

func NewReportService(config cfg.Config, accounts repository.SocialAccountRepository, sync SyncService) ReportService {
	return &reportService{
		config:   config,
		accounts: accounts,
		sync:     sync,
	}
}

func (r *reportService) Generate(ctx context.Context) (*transfer.SyncReport, error) {
	stats, err := r.sync.Statistics(ctx, 7)
	if err != nil {
		return nil, err
	}

	accountStats, err := r.accounts.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	platformStats, err := r.accounts.CountByPlatform(ctx)
	if err != nil {
		return nil, err
	}

	report := &transfer.SyncReport{
		GeneratedAt:        time.Now().UTC(),
		SyncStatistics:     stats,
		AccountStatistics:  accountStats,
		PlatformStatistics: platformStats,
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	key := fmt.Sprintf("reports/sync-report-%s.json", report.GeneratedAt.Format("2006-01-02"))
	if err := r.uploadToR2(ctx, key, body); err != nil {
		return nil, err
	}

	slog.Info("sync report archived", "key", key)
	return report, nil
}

func (r *reportService) r2Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
	}), nil
}

func (r *reportService) uploadToR2(ctx context.Context, key string, body []byte) error {
	client, err := r.r2Client(ctx)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
