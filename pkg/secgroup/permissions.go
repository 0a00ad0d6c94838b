package secgroup

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
)

// allProtocols is the EC2 protocol value covering every protocol and port.
const allProtocols = "-1"

func ipPermissionFromCIDRs(cidrs []string) *ec2.IpPermission {
	ranges := make([]*ec2.IpRange, len(cidrs))
	for i, cidr := range cidrs {
		ranges[i] = &ec2.IpRange{CidrIp: aws.String(cidr)}
	}

	return (&ec2.IpPermission{}).
		SetIpProtocol(allProtocols).
		SetFromPort(-1).
		SetToPort(-1).
		SetIpRanges(ranges)
}

// CIDRs lists the ranges carried by a permission.
func CIDRs(perm *ec2.IpPermission) []string {
	cidrs := make([]string, len(perm.IpRanges))
	for i, rng := range perm.IpRanges {
		cidrs[i] = aws.StringValue(rng.CidrIp)
	}

	return cidrs
}
