package athena

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/athena"
	"github.com/aws/aws-sdk-go/service/athena/athenaiface"
	"github.com/pkg/errors"
)

func NewClient(region string) Client {
	awsConfig := aws.NewConfig()
	if region != "" { // if no region was supplied let the SDK resolve it from the environment (Lambda sets AWS_REGION)...
		awsConfig.Region = aws.String(region)
	}
	sess := session.Must(session.NewSession(awsConfig))
	return &client{api: athena.New(sess)}
}

// NewClientWithAPI allows tests to supply a mock AthenaAPI.
func NewClientWithAPI(api athenaiface.AthenaAPI) Client {
	return &client{api: api}
}

type client struct {
	api athenaiface.AthenaAPI
}

func (c *client) StartQuery(q Query) (string, error) {
	input := &athena.StartQueryExecutionInput{
		QueryString: aws.String(q.SQL),
		QueryExecutionContext: &athena.QueryExecutionContext{
			Database: aws.String(q.Database),
		},
		ResultConfiguration: &athena.ResultConfiguration{
			OutputLocation: aws.String(q.OutputLocation),
		},
	}
	if q.Workgroup != "" {
		input.WorkGroup = aws.String(q.Workgroup)
	}
	if q.Token != "" { // the engine dedups resubmissions carrying the same token...
		input.ClientRequestToken = aws.String(q.Token)
	}
	resp, err := c.api.StartQueryExecution(input)
	if err != nil {
		return "", errors.Wrap(err, "query submission rejected")
	}
	return aws.StringValue(resp.QueryExecutionId), nil
}

func (c *client) GetStatus(queryID string) (Status, error) {
	resp, err := c.api.GetQueryExecution(&athena.GetQueryExecutionInput{
		QueryExecutionId: aws.String(queryID),
	})
	if err != nil {
		return Status{}, errors.Wrapf(err, "error fetching status of query %v", queryID)
	}
	s := Status{}
	if resp.QueryExecution != nil && resp.QueryExecution.Status != nil {
		s.State = QueryState(aws.StringValue(resp.QueryExecution.Status.State))
		s.Reason = aws.StringValue(resp.QueryExecution.Status.StateChangeReason)
	}
	return s, nil
}
