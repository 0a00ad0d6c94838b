package awscloud

import (
	"errors"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/ec2"
)

// EC2 error codes the security group reconciler treats as expected.
const (
	ErrCodeGroupDuplicate      = "InvalidGroup.Duplicate"
	ErrCodeGroupNotFound       = "InvalidGroup.NotFound"
	ErrCodePermissionDuplicate = "InvalidPermission.Duplicate"
	ErrCodeDependencyViolation = "DependencyViolation"
)

// ErrorCode returns the AWS error code carried by err, or "".
func ErrorCode(err error) string {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code()
	}

	return ""
}

func IsErrorCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}

func getTagValue(tags []*ec2.Tag, key string) string {
	for _, tag := range tags {
		if tag.Key != nil && *tag.Key == key && tag.Value != nil {
			return *tag.Value
		}
	}

	return ""
}
