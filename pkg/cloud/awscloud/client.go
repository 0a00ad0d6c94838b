package awscloud

import (
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/defaults"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
)

func getAWSSession(region string) (*session.Session, error) {
	config := aws.Config{
		Region: &region,
		Credentials: credentials.NewChainCredentials(
			[]credentials.Provider{
				&credentials.EnvProvider{},
				&credentials.SharedCredentialsProvider{},
				defaults.RemoteCredProvider(*(defaults.Config()), defaults.Handlers()),
			},
		),
	}

	return session.NewSession(&config)
}

// ClientFactory returns an EC2 client bound to a region.
type ClientFactory func(region string) (ec2iface.EC2API, error)

// NewClientFactory builds EC2 clients on demand and reuses one per region.
func NewClientFactory() ClientFactory {
	var mx sync.Mutex
	clients := make(map[string]ec2iface.EC2API)

	return func(region string) (ec2iface.EC2API, error) {
		mx.Lock()
		defer mx.Unlock()

		if c, ok := clients[region]; ok {
			return c, nil
		}

		sess, err := getAWSSession(region)
		if err != nil {
			return nil, fmt.Errorf("aws: unable to initialise session for %s: %w", region, err)
		}

		c := ec2.New(sess)
		clients[region] = c

		return c, nil
	}
}
