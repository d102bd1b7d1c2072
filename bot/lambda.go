package bot

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/domino14/caissa/position"
)

// LambdaInvoker is the part of the Lambda API client we use.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaProvider chooses moves by synchronously invoking the bot deployed as
// a Lambda function.
type LambdaProvider struct {
	client   LambdaInvoker
	function string
}

func NewLambdaProvider(ctx context.Context, function string) (*LambdaProvider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS config")
	}
	return NewLambdaProviderWithClient(lambda.NewFromConfig(awsCfg), function), nil
}

func NewLambdaProviderWithClient(client LambdaInvoker, function string) *LambdaProvider {
	return &LambdaProvider{client: client, function: function}
}

func (lp *LambdaProvider) RequestMove(ctx context.Context, fen, difficulty string) (*Response, error) {
	payload, err := json.Marshal(LambdaEvent{Request: Request{FEN: fen, Difficulty: difficulty}})
	if err != nil {
		return nil, err
	}
	out, err := lp.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(lp.function),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "invoking %s", lp.function)
	}
	if out.FunctionError != nil {
		log.Error().Str("function", lp.function).Str("payload", string(out.Payload)).
			Msg("lambda-function-error")
		return nil, errors.Errorf("%s failed: %s", lp.function, aws.ToString(out.FunctionError))
	}
	resp := &Response{}
	if err := json.Unmarshal(out.Payload, resp); err != nil {
		return nil, errors.Wrap(err, "decoding lambda response")
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

func (lp *LambdaProvider) ChooseMove(ctx context.Context, pos *position.Position, difficulty string) (position.Move, error) {
	resp, err := lp.RequestMove(ctx, pos.FEN(), difficulty)
	if err != nil {
		return position.Move{}, err
	}
	return moveFromResponse(pos, resp)
}
