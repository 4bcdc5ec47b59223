package config

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ResolveBaseURL returns the feed base URL for the given environment.
// In prod the URL is read from SSM Parameter Store when a parameter name is
// configured; any lookup failure falls back to the configured base URL.
func (cfg *FeedConfig) ResolveBaseURL(env string) string {
	if env != "prod" || cfg.SSMParameter == "" {
		return cfg.BaseURL
	}

	if url := getParameterStoreValue(cfg.SSMParameter, true); url != "" {
		return url
	}
	return cfg.BaseURL
}

func getParameterStoreValue(parameterName string, decrypt bool) string {
	baseCtx := context.Background()
	ctxWithTimeout, cancel := context.WithTimeout(baseCtx, 5*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctxWithTimeout)
	if err != nil {
		return ""
	}

	client := ssm.NewFromConfig(cfg)

	input := &ssm.GetParameterInput{
		Name:           &parameterName,
		WithDecryption: &decrypt,
	}

	result, err := client.GetParameter(ctxWithTimeout, input)
	if err != nil {
		return ""
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return ""
	}

	return *result.Parameter.Value
}
