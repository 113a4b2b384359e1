package aws_handler

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	secretsmanageriface.SecretsManagerAPI
	values map[string]*string
}

func (f *fakeSecrets) GetSecretValueWithContext(_ aws.Context, in *secretsmanager.GetSecretValueInput, _ ...request.Option) (*secretsmanager.GetSecretValueOutput, error) {
	v, ok := f.values[*in.SecretId]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: v}, nil
}

func TestGetSecretValue(t *testing.T) {
	sm := NewSecretManager(&fakeSecrets{values: map[string]*string{
		"admin": aws.String("s3cret"),
		"blob":  nil,
	}})

	value, err := sm.GetSecretValue(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)

	_, err = sm.GetSecretValue(context.Background(), "blob")
	assert.Error(t, err)

	_, err = sm.GetSecretValue(context.Background(), "missing")
	assert.Error(t, err)
}
