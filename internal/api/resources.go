package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mcpherd/mcpherd/internal/contracts"
	"github.com/mcpherd/mcpherd/internal/supervisor"
)

// Resource represents a resource exposed by an MCP server.
type Resource struct {
	URI         string `doc:"URI identifying the resource"      json:"uri"`
	Name        string `doc:"Name of the resource"              json:"name,omitempty"`
	Description string `doc:"Description of the resource"       json:"description,omitempty"`
	MIMEType    string `doc:"MIME type of the resource content" json:"mimeType,omitempty"`
}

// DomainResource wraps supervisor.ResourceDescriptor for conversion to Resource via ToAPIType.
type DomainResource supervisor.ResourceDescriptor

// ResourcesResponse represents the wrapped API response for a list of resources.
type ResourcesResponse struct {
	Body struct {
		Resources []Resource `doc:"Resources exposed by the server" json:"resources"`
	}
}

// ResourceReadRequest represents the incoming API request to read a resource from a server.
type ResourceReadRequest struct {
	Name string `doc:"Name of the server"              example:"filesystem"        path:"name"`
	URI  string `doc:"URI of the resource to read"     example:"file:///notes.txt" query:"uri" required:"true"`
}

// ResourceReadResponse represents the wrapped API response for reading a resource.
type ResourceReadResponse struct {
	Body json.RawMessage
}

// ToAPIType converts a wrapped domain type to Resource.
func (d DomainResource) ToAPIType() (Resource, error) {
	return Resource{
		URI:         d.URI,
		Name:        d.Name,
		Description: d.Description,
		MIMEType:    d.MIMEType,
	}, nil
}

// RegisterResourceRoutes sets up resource-related API endpoint routes.
func RegisterResourceRoutes(routerAPI huma.API, sup contracts.ServerSupervisor) {
	tags := []string{"Resources"}

	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "listResources",
			Method:      http.MethodGet,
			Path:        "/{name}/resources",
			Summary:     "List server resources",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerRequest) (*ResourcesResponse, error) {
			return handleServerResources(ctx, sup, input.Name)
		},
	)

	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "readResource",
			Method:      http.MethodGet,
			Path:        "/{name}/resources/content",
			Summary:     "Read a resource from a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ResourceReadRequest) (*ResourceReadResponse, error) {
			content, err := sup.ReadResource(ctx, input.Name, input.URI)
			if err != nil {
				return nil, err
			}
			return &ResourceReadResponse{Body: content}, nil
		},
	)
}

// handleServerResources returns the resources exposed by a given server.
func handleServerResources(ctx context.Context, sup contracts.ServerSupervisor, name string) (*ResourcesResponse, error) {
	resources, err := sup.Resources(ctx, name)
	if err != nil {
		return nil, err
	}

	apiResources := make([]Resource, 0, len(resources))
	for _, r := range resources {
		data, err := DomainResource(r).ToAPIType()
		if err != nil {
			return nil, err
		}
		apiResources = append(apiResources, data)
	}

	resp := &ResourcesResponse{}
	resp.Body.Resources = apiResources

	return resp, nil
}
