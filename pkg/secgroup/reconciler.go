// Package secgroup keeps one EC2 security group per region open to every
// cluster instance and to a fixed allow-list of address ranges.
package secgroup

import (
	"context"

	"janusops/pkg/cloud/awscloud"
	"janusops/pkg/configuration"
	"janusops/pkg/types"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	opentracing "github.com/opentracing/opentracing-go"
	otlog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Reconciler holds the region to group id mapping for one run. It is not safe
// for concurrent use.
type Reconciler struct {
	clients     awscloud.ClientFactory
	groupName   func(region string) string
	description string
	allowed     []string
	groups      map[string]string
}

func NewReconciler(cfg *configuration.Config, clients awscloud.ClientFactory) *Reconciler {
	return &Reconciler{
		clients:     clients,
		groupName:   cfg.GroupName,
		description: cfg.AWS.GroupDescription,
		allowed:     append([]string{}, cfg.AWS.AllowedCIDRs...),
		groups:      make(map[string]string),
	}
}

// GroupName returns the deterministic security group name for a region.
func (r *Reconciler) GroupName(region string) string {
	return r.groupName(region)
}

// EnsureGroups makes sure the cluster security group exists in every region and
// returns their ids. Regions already resolved during this run are answered from
// the cache without calling AWS. The first region that yields no id aborts the
// call with a *ConfigError.
func (r *Reconciler) EnsureGroups(ctx context.Context, regions []string) (map[string]string, error) {
	out := make(map[string]string, len(regions))

	for _, region := range regions {
		if id, ok := r.groups[region]; ok {
			out[region] = id
			continue
		}

		id, err := r.ensureGroup(ctx, region)
		if err != nil {
			return nil, err
		}

		r.groups[region] = id
		out[region] = id
	}

	return out, nil
}

func (r *Reconciler) ensureGroup(ctx context.Context, region string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "secgroup.ensure")
	defer span.Finish()
	span.SetTag("region", region)

	name := r.groupName(region)

	client, err := r.clients(region)
	if err != nil {
		return "", &ConfigError{Region: region, GroupName: name, Err: err}
	}

	created, err := client.CreateSecurityGroupWithContext(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String(r.description),
	})
	if err == nil && created != nil && aws.StringValue(created.GroupId) != "" {
		log.Infof("created security group %s (%s) in %s", name, aws.StringValue(created.GroupId), region)
		return aws.StringValue(created.GroupId), nil
	}

	if err != nil && !awscloud.IsErrorCode(err, awscloud.ErrCodeGroupDuplicate) {
		span.LogFields(otlog.Error(err))
		return "", &ConfigError{Region: region, GroupName: name, Err: err}
	}

	log.Debugf("security group %s already exists in %s, looking it up", name, region)

	id, err := lookupGroupID(ctx, client, name)
	if err != nil {
		span.LogFields(otlog.Error(err))
		return "", &ConfigError{Region: region, GroupName: name, Err: err}
	}

	return id, nil
}

func lookupGroupID(ctx context.Context, client ec2iface.EC2API, name string) (string, error) {
	resp, err := client.DescribeSecurityGroupsWithContext(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []*ec2.Filter{
			{
				Name:   aws.String("group-name"),
				Values: []*string{aws.String(name)},
			},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "describing security groups")
	}

	for _, g := range resp.SecurityGroups {
		if aws.StringValue(g.GroupName) == name && aws.StringValue(g.GroupId) != "" {
			return aws.StringValue(g.GroupId), nil
		}
	}

	return "", errors.Errorf("no security group named %s returned", name)
}

// ClusterPermission builds the single all-traffic rule for a group: a /32 for
// every instance public address in every region, plus the allow-list. The
// result does not depend on which region's group it is applied to.
func ClusterPermission(instances types.InstancesByRegion, allowed []string) *ec2.IpPermission {
	cidrs := clusterCIDRs(instances, allowed)

	return ipPermissionFromCIDRs(types.Sorted(cidrs))
}

func clusterCIDRs(instances types.InstancesByRegion, allowed []string) types.Set[string] {
	cidrs := make(types.Set[string])

	for _, ip := range instances.PublicIPs() {
		cidrs.Add(ip + "/32")
	}
	cidrs.Add(allowed...)

	return cidrs
}

// AuthorizeClusterIngress opens each region's group to the whole cluster. When
// regions is empty the regions present in instances are used. Group creation
// failures are returned as an error before any rule changes; per-region rule
// failures are recorded in the report and do not stop later regions.
func (r *Reconciler) AuthorizeClusterIngress(ctx context.Context, regions []string, instances types.InstancesByRegion) (*Report, error) {
	if len(regions) == 0 {
		regions = instances.Regions()
	}

	groups, err := r.EnsureGroups(ctx, regions)
	if err != nil {
		return nil, err
	}

	desired := clusterCIDRs(instances, r.allowed)
	report := &Report{}

	for _, region := range regions {
		res := r.authorizeRegion(ctx, region, groups[region], regions, desired)

		switch res.Outcome {
		case Failed:
			log.WithField("region", region).Errorf("authorizing ingress for %s failed: %+v", res.GroupID, res.Err)
		case Ignored:
			log.WithField("region", region).Warnf("authorizing ingress for %s: %s", res.GroupID, res.Err)
		default:
			log.WithField("region", region).Infof("ingress for %s %s", res.GroupID, res.Outcome)
		}

		report.add(res)
	}

	return report, nil
}

func (r *Reconciler) authorizeRegion(ctx context.Context, region, groupID string, regions []string, desired types.Set[string]) *Result {
	span, ctx := opentracing.StartSpanFromContext(ctx, "secgroup.authorize")
	defer span.Finish()
	span.SetTag("region", region)

	res := &Result{Region: region, GroupID: groupID}

	client, err := r.clients(region)
	if err != nil {
		res.Outcome, res.Err = Failed, errors.WithStack(err)
		return res
	}

	r.authorizeGroupSources(ctx, client, region, groupID, regions)

	existing, err := ingressCIDRs(ctx, client, groupID)
	if err != nil {
		span.LogFields(otlog.Error(err))
		res.Outcome, res.Err = Failed, err
		return res
	}

	missing := desired.Diff(existing)
	if len(missing) == 0 {
		res.Outcome = Unchanged
		return res
	}

	res.CIDRs = types.Sorted(missing)
	log.Debugf("adding %v to security group %s in %s", res.CIDRs, groupID, region)

	_, err = client.AuthorizeSecurityGroupIngressWithContext(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:       aws.String(groupID),
		IpPermissions: []*ec2.IpPermission{ipPermissionFromCIDRs(res.CIDRs)},
	})

	switch {
	case err == nil:
		res.Outcome = Applied
	case awscloud.IsErrorCode(err, awscloud.ErrCodePermissionDuplicate):
		res.Outcome, res.Err = Ignored, err
	default:
		span.LogFields(otlog.Error(err))
		res.Outcome, res.Err = Failed, errors.WithStack(err)
	}

	return res
}

// authorizeGroupSources trusts every cluster group by name. AWS only accepts
// named source groups from the same region and default VPC, so most of these
// calls are rejected; the rejections are logged and otherwise ignored.
func (r *Reconciler) authorizeGroupSources(ctx context.Context, client ec2iface.EC2API, region, groupID string, regions []string) {
	for _, source := range regions {
		name := r.groupName(source)

		_, err := client.AuthorizeSecurityGroupIngressWithContext(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
			GroupId:                 aws.String(groupID),
			SourceSecurityGroupName: aws.String(name),
		})
		if err != nil {
			log.Debugf("security group %s in %s does not accept source group %s: %s", groupID, region, name, err)
		}
	}
}

func ingressCIDRs(ctx context.Context, client ec2iface.EC2API, groupID string) (types.Set[string], error) {
	resp, err := client.DescribeSecurityGroupsWithContext(ctx, &ec2.DescribeSecurityGroupsInput{
		GroupIds: []*string{aws.String(groupID)},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "loading security group %s", groupID)
	}

	cidrs := make(types.Set[string])
	for _, g := range resp.SecurityGroups {
		for _, perm := range g.IpPermissions {
			if aws.StringValue(perm.IpProtocol) != allProtocols {
				continue
			}
			for _, rng := range perm.IpRanges {
				cidrs.Add(aws.StringValue(rng.CidrIp))
			}
		}
	}

	return cidrs, nil
}

// DeleteGroup removes the region's cluster group by name. It never fails: the
// group may be missing or still referenced, and either is reported as Ignored.
// An empty region is a no-op.
func (r *Reconciler) DeleteGroup(ctx context.Context, region string) *Result {
	res := &Result{Region: region, Outcome: Unchanged}
	if region == "" {
		return res
	}

	span, ctx := opentracing.StartSpanFromContext(ctx, "secgroup.delete")
	defer span.Finish()
	span.SetTag("region", region)

	name := r.groupName(region)
	res.GroupID = r.groups[region]

	client, err := r.clients(region)
	if err == nil {
		_, err = client.DeleteSecurityGroupWithContext(ctx, &ec2.DeleteSecurityGroupInput{
			GroupName: aws.String(name),
		})
	}

	if err != nil {
		log.Warnf("unable to delete security group %s in %s: %s", name, region, err)
		res.Outcome, res.Err = Ignored, err
		return res
	}

	log.Infof("deleted security group %s in %s", name, region)
	delete(r.groups, region)
	res.Outcome = Applied

	return res
}
