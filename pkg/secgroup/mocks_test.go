package secgroup

import (
	"janusops/pkg/cloud/awscloud"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
)

type mockEC2Service struct {
	createID     string
	createErr    error
	groups       []*ec2.SecurityGroup
	describeErr  error
	sourceErr    error
	authorizeErr error
	deleteErr    error

	calls      []string
	authorized []*ec2.IpPermission
	deleted    []string
	ec2iface.EC2API
}

func (m *mockEC2Service) CreateSecurityGroupWithContext(_ aws.Context, in *ec2.CreateSecurityGroupInput, _ ...request.Option) (*ec2.CreateSecurityGroupOutput, error) {
	m.calls = append(m.calls, "create:"+aws.StringValue(in.GroupName))
	if m.createErr != nil {
		return nil, m.createErr
	}

	return &ec2.CreateSecurityGroupOutput{GroupId: aws.String(m.createID)}, nil
}

func (m *mockEC2Service) DescribeSecurityGroupsWithContext(_ aws.Context, in *ec2.DescribeSecurityGroupsInput, _ ...request.Option) (*ec2.DescribeSecurityGroupsOutput, error) {
	m.calls = append(m.calls, "describe")
	if m.describeErr != nil {
		return nil, m.describeErr
	}

	out := &ec2.DescribeSecurityGroupsOutput{}
	for _, g := range m.groups {
		if len(in.GroupIds) > 0 && aws.StringValue(in.GroupIds[0]) != aws.StringValue(g.GroupId) {
			continue
		}
		if len(in.Filters) > 0 && aws.StringValue(in.Filters[0].Values[0]) != aws.StringValue(g.GroupName) {
			continue
		}
		out.SecurityGroups = append(out.SecurityGroups, g)
	}

	return out, nil
}

func (m *mockEC2Service) AuthorizeSecurityGroupIngressWithContext(_ aws.Context, in *ec2.AuthorizeSecurityGroupIngressInput, _ ...request.Option) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	if in.SourceSecurityGroupName != nil {
		m.calls = append(m.calls, "authorize-source:"+aws.StringValue(in.SourceSecurityGroupName))
		return nil, m.sourceErr
	}

	m.calls = append(m.calls, "authorize")
	if m.authorizeErr != nil {
		return nil, m.authorizeErr
	}
	m.authorized = append(m.authorized, in.IpPermissions...)

	return &ec2.AuthorizeSecurityGroupIngressOutput{}, nil
}

func (m *mockEC2Service) DeleteSecurityGroupWithContext(_ aws.Context, in *ec2.DeleteSecurityGroupInput, _ ...request.Option) (*ec2.DeleteSecurityGroupOutput, error) {
	m.calls = append(m.calls, "delete:"+aws.StringValue(in.GroupName))
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	m.deleted = append(m.deleted, aws.StringValue(in.GroupName))

	return &ec2.DeleteSecurityGroupOutput{}, nil
}

func factoryFor(clients map[string]*mockEC2Service) awscloud.ClientFactory {
	return func(region string) (ec2iface.EC2API, error) {
		return clients[region], nil
	}
}

func namedGroup(name, id string, cidrs ...string) *ec2.SecurityGroup {
	g := &ec2.SecurityGroup{GroupName: aws.String(name), GroupId: aws.String(id)}
	if len(cidrs) > 0 {
		g.IpPermissions = []*ec2.IpPermission{ipPermissionFromCIDRs(cidrs)}
	}

	return g
}
