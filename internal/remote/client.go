package remote

import (
	"encoding/json"
	"strings"
	"time"

	"ferremas/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// Client issues CRUD requests against the upstream catalog/order/user
// service. Every failure comes back as *Error with a classified Kind.
type Client struct {
	base    string
	timeout time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{base: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

func (c *Client) do(op, method, path string, body any) (int, []byte, error) {
	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.base + path)
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			fiber.ReleaseAgent(a)
			return 0, nil, &Error{Kind: KindDecode, Op: op, Err: err}
		}
		req.Header.SetContentType(fiber.MIMEApplicationJSON)
		req.SetBody(b)
	}
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return 0, nil, &Error{Kind: KindUnreachable, Op: op, Err: err}
	}
	code, b, errs := a.Timeout(c.timeout).Bytes()
	if len(errs) > 0 {
		return 0, nil, &Error{Kind: KindUnreachable, Op: op, Err: errs[0]}
	}
	return code, b, nil
}

// call runs a request and decodes a required JSON body into out.
// out == nil means the caller only needs a 2xx with any (or no) body.
func (c *Client) call(op, method, path string, body, out any) error {
	code, b, err := c.do(op, method, path, body)
	if err != nil {
		return err
	}
	if code < 200 || code >= 300 {
		return &Error{Kind: KindHTTPStatus, Op: op, Status: code}
	}
	if out == nil {
		return nil
	}
	if len(b) == 0 {
		return &Error{Kind: KindEmptyBody, Op: op}
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Err: err}
	}
	return nil
}

// ---------- Products ----------

func (c *Client) ListProducts() ([]domain.Product, error) {
	var dtos []productDTO
	if err := c.call("products.list", fiber.MethodGet, "/products", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) GetProduct(id string) (domain.Product, error) {
	var d productDTO
	if err := c.call("products.get", fiber.MethodGet, "/products/"+id, nil, &d); err != nil {
		return domain.Product{}, err
	}
	return d.toDomain(), nil
}

func (c *Client) CreateProduct(p domain.Product) (domain.Product, error) {
	var d productDTO
	if err := c.call("products.create", fiber.MethodPost, "/products", productToDTO(p), &d); err != nil {
		return domain.Product{}, err
	}
	return d.toDomain(), nil
}

func (c *Client) UpdateProduct(p domain.Product) error {
	return c.call("products.update", fiber.MethodPut, "/products/"+p.ID, productToDTO(p), nil)
}

func (c *Client) DeleteProduct(id string) error {
	return c.call("products.delete", fiber.MethodDelete, "/products/"+id, nil, nil)
}

// ---------- Orders ----------

func (c *Client) ListOrders() ([]domain.OrderWithItems, error) {
	var dtos []orderDTO
	if err := c.call("orders.list", fiber.MethodGet, "/orders", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.OrderWithItems, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) ListOrdersByUser(rut string) ([]domain.OrderWithItems, error) {
	var dtos []orderDTO
	if err := c.call("orders.list_by_user", fiber.MethodGet, "/orders/user/"+rut, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.OrderWithItems, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) GetOrder(id string) (domain.OrderWithItems, error) {
	var d orderDTO
	if err := c.call("orders.get", fiber.MethodGet, "/orders/"+id, nil, &d); err != nil {
		return domain.OrderWithItems{}, err
	}
	return d.toDomain(), nil
}

func (c *Client) GetOrderItems(id string) ([]domain.OrderLineItem, error) {
	var dtos []lineItemDTO
	if err := c.call("orders.items", fiber.MethodGet, "/orders/"+id+"/items", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.OrderLineItem, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) CreateOrder(o domain.OrderWithItems) error {
	return c.call("orders.create", fiber.MethodPost, "/orders", orderToDTO(o), nil)
}

func (c *Client) UpdateOrderStatus(id string, status domain.OrderStatus) error {
	body := map[string]string{"status": string(status)}
	return c.call("orders.patch_status", fiber.MethodPatch, "/orders/"+id, body, nil)
}

// ---------- Users ----------

func (c *Client) ListUsers() ([]domain.User, error) {
	var dtos []userDTO
	if err := c.call("users.list", fiber.MethodGet, "/users", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) GetUser(id string) (domain.User, error) {
	return c.getUser("users.get", "/users/"+id)
}

func (c *Client) GetUserByEmail(email string) (domain.User, error) {
	return c.getUser("users.get_by_email", "/users/email/"+email)
}

func (c *Client) GetUserByUsername(username string) (domain.User, error) {
	return c.getUser("users.get_by_username", "/users/username/"+username)
}

func (c *Client) GetUserByRut(rut string) (domain.User, error) {
	return c.getUser("users.get_by_rut", "/users/rut/"+rut)
}

func (c *Client) getUser(op, path string) (domain.User, error) {
	var d userDTO
	if err := c.call(op, fiber.MethodGet, path, nil, &d); err != nil {
		return domain.User{}, err
	}
	return d.toDomain(), nil
}

func (c *Client) CreateUser(u domain.User) error {
	return c.call("users.create", fiber.MethodPost, "/users", userToDTO(u), nil)
}

func (c *Client) UpdateUser(u domain.User) error {
	return c.call("users.update", fiber.MethodPut, "/users/"+u.ID, userToDTO(u), nil)
}

func (c *Client) DeleteUser(id string) error {
	return c.call("users.delete", fiber.MethodDelete, "/users/"+id, nil, nil)
}
