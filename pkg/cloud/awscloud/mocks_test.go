package awscloud

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
)

type mockEC2Service struct {
	pages       [][]*ec2.Instance
	responseErr error
	inputs      []*ec2.DescribeInstancesInput
	ec2iface.EC2API
}

func (m *mockEC2Service) DescribeInstancesPagesWithContext(_ aws.Context, in *ec2.DescribeInstancesInput, fn func(*ec2.DescribeInstancesOutput, bool) bool, _ ...request.Option) error {
	m.inputs = append(m.inputs, in)

	if m.responseErr != nil {
		return m.responseErr
	}

	for i, instances := range m.pages {
		out := &ec2.DescribeInstancesOutput{
			Reservations: []*ec2.Reservation{
				{Instances: instances},
			},
		}
		if !fn(out, i == len(m.pages)-1) {
			break
		}
	}

	return nil
}

func factoryFor(clients map[string]*mockEC2Service) ClientFactory {
	return func(region string) (ec2iface.EC2API, error) {
		return clients[region], nil
	}
}
