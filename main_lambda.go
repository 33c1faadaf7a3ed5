//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

// lambdaConfig reads the optional "options" object of a request body.
func lambdaConfig(body string) Config {
	cfg := DefaultConfig()
	opts := gjson.Get(body, "options")
	if v := opts.Get("topN"); v.Exists() {
		cfg.TopN = int(v.Int())
	}
	if v := opts.Get("pruneThreshold"); v.Exists() {
		cfg.PruneThreshold = v.Float()
	}
	if v := opts.Get("scoreGapThreshold"); v.Exists() {
		cfg.ScoreGapThreshold = v.Float()
	}
	if v := opts.Get("workers"); v.Exists() {
		cfg.Workers = int(v.Int())
	}
	cfg.ProgressInterval = 0
	return cfg
}

func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}

	in, err := parseInput(body)
	if err != nil {
		return errResp(400, err.Error())
	}
	cfg := lambdaConfig(body).withConstraints(in.Constraints)
	if err := cfg.Validate(); err != nil {
		return errResp(400, err.Error())
	}

	if ids := gjson.Get(body, "eval"); ids.IsArray() {
		var list []string
		for _, id := range ids.Array() {
			list = append(list, id.String())
		}
		b, err := evaluateIDs(in, list, cfg)
		if err != nil {
			return errResp(400, err.Error())
		}
		return okResp(buildJSON(1, &b))
	}

	req, res, err := optimize(ctx, in, cfg)
	switch {
	case errors.Is(err, ErrNoCandidates), errors.Is(err, ErrNoSkills),
		errors.Is(err, ErrUnknownProperty), errors.Is(err, ErrUnknownSet):
		return errResp(400, err.Error())
	case err != nil:
		return errResp(500, err.Error())
	}
	return okResp(newRunOutput(req, res))
}

func okResp(v any) (events.LambdaFunctionURLResponse, error) {
	body, err := sonic.Marshal(v)
	if err != nil {
		return errResp(500, err.Error())
	}
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(body)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := sonic.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	if err := initLogger("warn", true); err != nil {
		panic(err)
	}
	lambda.Start(handler)
}
